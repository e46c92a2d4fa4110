package query

import (
	splatview "github.com/gogpu/splatview"
)

// ResultState is the readback stage of an in-flight locate-hit probe.
type ResultState int

const (
	// ResultIdle means no probe is in flight.
	ResultIdle ResultState = iota
	// ResultLocatePending means the query was emitted this frame and
	// the GPU pass has not produced a downloadable count yet.
	ResultLocatePending
	// ResultDownloading means the readback task is running and its
	// cell is being polled.
	ResultDownloading
)

// String returns the string representation of ResultState.
func (s ResultState) String() string {
	switch s {
	case ResultIdle:
		return "Idle"
	case ResultLocatePending:
		return "LocatePending"
	case ResultDownloading:
		return "Downloading"
	default:
		return "Unknown"
	}
}

// ResultTracker follows one locate-hit probe from emission to
// delivered samples. At most one probe is in flight per tracker; a
// Begin while another probe is active is dropped with a log line, which
// keeps the single-readback-cycle rule without surfacing an error for
// an impatient double click.
type ResultTracker struct {
	state  ResultState
	method HitMethod
	done   *splatview.Deferred[[]HitSample]
}

// NewResultTracker returns an idle tracker.
func NewResultTracker() *ResultTracker {
	return &ResultTracker{}
}

// State returns the current readback stage.
func (t *ResultTracker) State() ResultState { return t.state }

// Method returns the disambiguation policy of the in-flight probe.
func (t *ResultTracker) Method() HitMethod { return t.method }

// Begin records a freshly emitted locate-hit query. Returns false when
// a probe is already in flight.
func (t *ResultTracker) Begin(method HitMethod) bool {
	if t.state != ResultIdle {
		splatview.Logger().Warn("locate hit already in flight, dropping", "state", t.state.String())
		return false
	}
	t.state = ResultLocatePending
	t.method = method
	return true
}

// StartDownload attaches the readback cell once the GPU pass has a
// result buffer to copy. It is a no-op unless a probe is pending.
func (t *ResultTracker) StartDownload(done *splatview.Deferred[[]HitSample]) {
	if t.state != ResultLocatePending {
		splatview.Logger().Warn("download started with no pending probe", "state", t.state.String())
		return
	}
	t.done = done
	t.state = ResultDownloading
}

// Poll drives the tracker one step. When the readback cell resolves it
// returns the samples with ok=true and resets to idle; a rejected cell
// resets to idle with ok=false and logs the failure.
func (t *ResultTracker) Poll() (samples []HitSample, ok bool) {
	if t.state != ResultDownloading {
		return nil, false
	}
	v, ready := t.done.Poll()
	if ready {
		t.reset()
		return v, true
	}
	if err := t.done.Err(); err != nil {
		splatview.Logger().Warn("locate hit download failed", "error", err)
		t.reset()
	}
	return nil, false
}

// Cancel abandons the in-flight probe. The background readback task, if
// any, keeps running; its late send resolves a cell nobody polls.
func (t *ResultTracker) Cancel() {
	t.reset()
}

func (t *ResultTracker) reset() {
	t.state = ResultIdle
	t.done = nil
}
