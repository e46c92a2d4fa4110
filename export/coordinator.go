package export

import (
	"bytes"
	"fmt"
	"io"

	splatview "github.com/gogpu/splatview"
	"github.com/gogpu/splatview/gaussian"
)

// Stage is the coordinator's pipeline state.
type Stage int

const (
	// StageIdle means the dialog is open but not yet confirmed.
	StageIdle Stage = iota
	// StageCollectingDownloads waits for the edit and mask buffer
	// downloads (AND-join).
	StageCollectingDownloads
	// StageAwaitingSavePath waits for the user's save destination.
	StageAwaitingSavePath
	// StageDone is terminal; the host discards the coordinator.
	StageDone
)

// String returns the string representation of Stage.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageCollectingDownloads:
		return "CollectingDownloads"
	case StageAwaitingSavePath:
		return "AwaitingSavePath"
	case StageDone:
		return "Done"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// BufferSource starts the background downloads of the per-model edit and
// mask buffers. Each returned cell resolves to one slice per model, in
// model order. Implemented by the scene session over the GPU downloader;
// tests substitute in-memory fakes.
type BufferSource interface {
	DownloadEdits() *splatview.Deferred[[][]gaussian.EditPod]
	DownloadMasks() *splatview.Deferred[[][]uint32]
}

// SavePicker asks the user for a save destination, off the control
// thread (the native file dialog blocks). The cell resolves to the
// destination, or is rejected when the user cancels or the dialog fails.
type SavePicker interface {
	PickSave(suggestedName string) *splatview.Deferred[io.WriteCloser]
}

// Coordinator sequences one export operation. It is created when the
// export dialog opens and discarded on cancel or completion. All methods
// are called from the control goroutine; background work communicates
// through the Deferred cells only.
type Coordinator struct {
	models   []Model
	settings []Settings

	stage Stage
	err   string

	// snapshot of settings at confirm time; flag changes made in the
	// dialog afterwards do not affect the running export.
	snapshot []Settings

	picker SavePicker
	edits  *splatview.Deferred[[][]gaussian.EditPod]
	masks  *splatview.Deferred[[][]uint32]

	gotEdits [][]gaussian.EditPod
	gotMasks [][]uint32

	dest *splatview.Deferred[io.WriteCloser]
}

// NewCoordinator creates an idle coordinator with all-enabled default
// settings for the given models.
func NewCoordinator(models []Model) *Coordinator {
	return &Coordinator{
		models:   models,
		settings: DefaultSettings(len(models)),
	}
}

// Stage returns the current pipeline stage.
func (c *Coordinator) Stage() Stage {
	return c.stage
}

// Err returns the persistent error string shown in the dialog, empty
// when none. It clears only when a new export is confirmed.
func (c *Coordinator) Err() string {
	return c.err
}

// Settings returns the live per-model settings for the dialog to edit.
func (c *Coordinator) Settings() []Settings {
	return c.settings
}

// Confirm snapshots the settings and starts the buffer downloads. It is
// a no-op unless the coordinator is Idle.
func (c *Coordinator) Confirm(src BufferSource, picker SavePicker) {
	if c.stage != StageIdle {
		return
	}
	if countExported(c.settings) == 0 {
		c.err = "no model selected for export"
		return
	}

	c.snapshot = make([]Settings, len(c.settings))
	copy(c.snapshot, c.settings)
	c.err = ""
	c.picker = picker

	c.edits = src.DownloadEdits()
	c.masks = src.DownloadMasks()
	c.stage = StageCollectingDownloads

	splatview.Logger().Info("export: downloads started", "models", len(c.models))
}

// Poll advances the pipeline. Called once per frame tick; never blocks.
// It returns the stage after advancing.
func (c *Coordinator) Poll() Stage {
	switch c.stage {
	case StageCollectingDownloads:
		c.pollDownloads()
	case StageAwaitingSavePath:
		c.pollSave()
	}
	return c.stage
}

// pollDownloads advances the AND-join. Both cells are polled every tick;
// the transition fires only on the tick where both are Ready at once.
func (c *Coordinator) pollDownloads() {
	edits, editsOK := c.edits.Poll()
	masks, masksOK := c.masks.Poll()
	if !editsOK || !masksOK {
		if err := c.edits.Err(); err != nil {
			c.fail(fmt.Sprintf("edit download: %v", err))
		} else if err := c.masks.Err(); err != nil {
			c.fail(fmt.Sprintf("mask download: %v", err))
		}
		return
	}

	c.gotEdits = edits
	c.gotMasks = masks
	c.dest = c.picker.PickSave(SuggestedFileName(c.models, c.snapshot))
	c.stage = StageAwaitingSavePath
}

// pollSave waits for the destination, then serializes in one shot.
func (c *Coordinator) pollSave() {
	dest, ok := c.dest.Poll()
	if !ok {
		if err := c.dest.Err(); err != nil {
			// Cancelled dialog or dialog failure: the operation simply
			// does not complete.
			c.fail(fmt.Sprintf("save destination: %v", err))
		}
		return
	}

	// Serialize to memory first so a mid-archive failure never leaves a
	// partial file at the destination.
	var buf bytes.Buffer
	if err := WriteModels(&buf, c.models, c.snapshot, c.gotEdits, c.gotMasks); err != nil {
		c.fail(err.Error())
		_ = dest.Close()
		return
	}

	if _, err := dest.Write(buf.Bytes()); err != nil {
		c.fail(fmt.Sprintf("write destination: %v", err))
		_ = dest.Close()
		return
	}
	if err := dest.Close(); err != nil {
		c.fail(fmt.Sprintf("close destination: %v", err))
		return
	}

	c.stage = StageDone
	splatview.Logger().Info("export: finished", "bytes", buf.Len())
}

// fail records the error, logs it, and terminates the pipeline. Export
// failures are never escalated; the user re-opens the dialog to retry.
func (c *Coordinator) fail(msg string) {
	c.err = msg
	c.stage = StageDone
	splatview.Logger().Warn("export: failed", "err", msg)
}
