// Package gpu runs the viewer's GPU-side work on wgpu/hal: asynchronous
// buffer readback for edit and mask downloads, and the compute kernel
// that evaluates a compiled mask expression over the point positions.
//
// Everything here follows one submission discipline: record into a
// command encoder, copy into a MapRead staging buffer, submit with a
// fence, wait with a bounded timeout, then read the staging buffer
// back. The bounded fence wait is the only blocking point; callers that
// must not block run Download on a background goroutine and poll the
// returned Deferred.
package gpu
