// Package splatview provides the interactive editing core of a Gaussian
// splat viewer built on the GoGPU ecosystem.
//
// # Overview
//
// splatview coordinates the frame-polled control loop of a splat editor:
// boolean mask expressions over geometric shapes, per-frame interaction
// queries (hit locating and selection), and multi-stage export of edited
// models. GPU pipeline construction, shader execution and windowing are
// supplied by the host application; splatview drives them through small
// interfaces and never blocks the control thread on background work.
//
// # Architecture
//
// The library is organized into:
//   - Root package: shared primitives (Deferred result cell, shapes,
//     f32 vector helpers, logging)
//   - maskexpr: mask expression parser, validation, evaluation trees
//   - gaussian: point data, per-point edits, PLY serialization
//   - export: the export coordinator state machine
//   - query: the per-frame interaction query state machine
//   - scene: the frame tick driver tying the above together
//   - render: device sharing with a GoGPU host application
//   - internal/gpu: buffer readback and the GPU mask evaluator
//
// # Concurrency Model
//
// A single control goroutine drives all state transitions once per frame
// tick. Background work (file dialogs, buffer readback) runs on separate
// goroutines and communicates exclusively through Deferred cells or
// channels, polled non-blockingly each tick. The one permitted blocking
// point is the bounded fence wait immediately after a GPU submission.
//
// # Quick Start
//
//	op, err := maskexpr.Parse("0 & !1")
//	if err != nil {
//	    // position-aware message for the editor
//	}
//	if err := op.ValidateShapes(len(shapes)); err != nil {
//	    // first out-of-range shape index
//	}
package splatview

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
