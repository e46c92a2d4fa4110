package query

import (
	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
)

// Modifiers is the keyboard modifier snapshot for one tick.
type Modifiers struct {
	// Shift selects the Add operation while held.
	Shift bool
	// Command is the platform command key (Ctrl on Linux/Windows,
	// Cmd on macOS); it selects the Remove operation while held.
	Command bool
}

// ShiftOnly reports whether shift is the only modifier held.
func (m Modifiers) ShiftOnly() bool { return m.Shift && !m.Command }

// CommandOnly reports whether command is the only modifier held.
func (m Modifiers) CommandOnly() bool { return m.Command && !m.Shift }

// Input is the abstract pointer/keyboard snapshot consumed each tick.
// The host window layer fills one per frame; the builder never talks to
// the platform directly.
type Input struct {
	// Pointer is the pointer position in window coordinates.
	Pointer f32.Vec2

	// PointerValid is false when the pointer is outside the window or
	// its position is unknown this tick.
	PointerValid bool

	// PrimaryDown is true while the primary button is held.
	PrimaryDown bool

	// PrimaryPressed is true only on the tick the button went down.
	PrimaryPressed bool

	// PrimaryReleased is true only on the tick the button went up.
	PrimaryReleased bool

	// PrimaryClicked is true on the tick a full click (press and
	// release in place) completed.
	PrimaryClicked bool

	// Modifiers is the modifier snapshot.
	Modifiers Modifiers

	// ScrollY is the vertical scroll delta for this tick.
	ScrollY float32
}

// Viewport is the interactive region of the window, in window
// coordinates.
type Viewport struct {
	Min f32.Vec2
	Max f32.Vec2
}

// Contains reports whether p lies inside the viewport.
func (v Viewport) Contains(p f32.Vec2) bool {
	return p[0] >= v.Min[0] && p[0] < v.Max[0] && p[1] >= v.Min[1] && p[1] < v.Max[1]
}

// Local converts a window position to viewport-relative pixels, the
// coordinate space the GPU query pipeline works in.
func (v Viewport) Local(p f32.Vec2) f32.Vec2 {
	return splatview.Sub2(p, v.Min)
}
