// Package export sequences the export of edited models: downloading the
// per-model edit and mask buffers from the GPU, asking the user for a
// save destination, and serializing the result.
//
// The Coordinator is a frame-polled state machine with no event
// callbacks:
//
//	Idle → CollectingDownloads → AwaitingSavePath → Done
//
// The transition out of CollectingDownloads is an AND-join over two
// independently polled Deferred cells, one for edit buffers and one for
// mask buffers. There is no timeout: a stalled download parks the
// coordinator until the host discards it, which is acceptable because
// GPU readbacks complete within one poll cycle in practice.
package export
