// Package query builds the per-frame interaction query of the viewer.
//
// Exactly one Query exists per frame tick. The Builder rebuilds it from
// the current input snapshot plus the previous tick's snapshot (for edge
// detection) and hands it to the external GPU query pipeline, which
// always receives a defined descriptor — an idle frame emits a no-op
// query rather than nothing.
//
// The package also owns hit disambiguation (most-alpha and closest
// policies over downloaded hit samples) and the ResultTracker state
// machine that follows a GPU readback without ever blocking the control
// thread.
package query
