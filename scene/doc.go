// Package scene owns the viewer's per-frame control loop. A single
// Session runs on the control goroutine: it drains the command channel,
// rebuilds the interaction query, hands the descriptor to the GPU query
// pipeline, and follows in-flight readbacks without blocking.
//
// Everything entering the scene from other goroutines arrives as a
// Command on the session's channel; the session is the only writer of
// its model list, shape list, and mask state.
package scene
