package query

import (
	"testing"

	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
)

func testViewport() Viewport {
	return Viewport{Min: f32.Vec2{100, 50}, Max: f32.Vec2{900, 650}}
}

func insideInput() Input {
	return Input{Pointer: f32.Vec2{400, 300}, PointerValid: true}
}

func TestBuilderIdleQuery(t *testing.T) {
	b := NewBuilder()
	q := b.Tick(insideInput(), testViewport(), ModeNone, nil)
	if q.Type != TypeNone {
		t.Errorf("Type = %v, want None", q.Type)
	}
	if d := q.Descriptor(); d != (Descriptor{}) {
		t.Errorf("idle descriptor = %+v, want zero", d)
	}
}

func TestBuilderLocateNeedsClickInsideViewport(t *testing.T) {
	b := NewBuilder()
	vp := testViewport()
	p, _ := splatview.NewDeferred[f32.Vec3]()
	req := &LocateRequest{Method: MethodClosest, Result: p}

	in := insideInput()
	if q := b.Tick(in, vp, ModeLocate, req); q.Type != TypeNone {
		t.Errorf("no click: Type = %v, want None", q.Type)
	}

	in.PrimaryClicked = true
	in.Pointer = f32.Vec2{50, 50} // outside
	if q := b.Tick(in, vp, ModeLocate, req); q.Type != TypeNone {
		t.Errorf("click outside viewport: Type = %v, want None", q.Type)
	}

	in.Pointer = f32.Vec2{400, 300}
	q := b.Tick(in, vp, ModeLocate, req)
	if q.Type != TypeLocateHit {
		t.Fatalf("click inside viewport: Type = %v, want LocateHit", q.Type)
	}
	if q.Method != MethodClosest {
		t.Errorf("Method = %v, want Closest", q.Method)
	}
	want := f32.Vec2{300, 250}
	if q.Pixel != want {
		t.Errorf("Pixel = %v, want %v (viewport-local)", q.Pixel, want)
	}
	if q.Result != p {
		t.Error("Result producer not carried through")
	}
}

func TestBuilderSelectionPhases(t *testing.T) {
	b := NewBuilder()
	vp := testViewport()

	in := insideInput()
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelPhase != PhaseUpdate {
		t.Errorf("hover phase = %v, want Update", q.SelPhase)
	}

	in.PrimaryPressed = true
	in.PrimaryDown = true
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelPhase != PhaseStart {
		t.Errorf("press phase = %v, want Start", q.SelPhase)
	}

	// Held: the pressed edge is gone, the stroke continues.
	in.PrimaryPressed = false
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelPhase != PhaseUpdate {
		t.Errorf("held phase = %v, want Update", q.SelPhase)
	}

	in.PrimaryDown = false
	in.PrimaryReleased = true
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelPhase != PhaseEnd {
		t.Errorf("release phase = %v, want End", q.SelPhase)
	}

	// A second release tick without a new press must not end again.
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelPhase != PhaseUpdate {
		t.Errorf("stale release phase = %v, want Update", q.SelPhase)
	}
}

func TestBuilderAbandonedStrokeRestarts(t *testing.T) {
	b := NewBuilder()
	vp := testViewport()

	// Press inside the viewport: a stroke begins.
	in := insideInput()
	in.PrimaryPressed = true
	in.PrimaryDown = true
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelPhase != PhaseStart {
		t.Fatalf("press phase = %v, want Start", q.SelPhase)
	}

	// Drag outside while held: the query reverts to idle.
	in.PrimaryPressed = false
	in.Pointer = f32.Vec2{0, 0}
	if q := b.Tick(in, vp, ModeSelect, nil); q.Type != TypeNone {
		t.Fatalf("outside drag Type = %v, want None", q.Type)
	}

	// Release outside: still idle, the stroke is abandoned.
	in.PrimaryDown = false
	in.PrimaryReleased = true
	if q := b.Tick(in, vp, ModeSelect, nil); q.Type != TypeNone {
		t.Fatalf("outside release Type = %v, want None", q.Type)
	}

	// A fresh press back inside must start a new stroke, not continue
	// the abandoned one.
	in = insideInput()
	in.PrimaryPressed = true
	in.PrimaryDown = true
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelPhase != PhaseStart {
		t.Errorf("fresh press phase = %v, want Start", q.SelPhase)
	}
}

func TestBuilderModeChangeAbandonsStroke(t *testing.T) {
	b := NewBuilder()
	vp := testViewport()

	in := insideInput()
	in.PrimaryPressed = true
	in.PrimaryDown = true
	b.Tick(in, vp, ModeSelect, nil) // Start

	// The mode leaves selection mid-stroke.
	in.PrimaryPressed = false
	b.Tick(in, vp, ModeNone, nil)

	// Re-entering selection with a fresh press starts a new stroke.
	in.PrimaryPressed = true
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelPhase != PhaseStart {
		t.Errorf("phase after mode round-trip = %v, want Start", q.SelPhase)
	}
}

func TestBuilderSelectionOpEdgeTriggered(t *testing.T) {
	b := NewBuilder()
	vp := testViewport()

	in := insideInput()
	in.PrimaryDown = true

	// Three ticks: [none, shift, none] with the pointer held. The
	// operation must go Set, Add, Set, each change landing exactly on
	// the tick the modifier snapshot changed.
	wantOps := []Op{OpSet, OpAdd, OpSet}
	mods := []Modifiers{{}, {Shift: true}, {}}
	for i, m := range mods {
		in.Modifiers = m
		q := b.Tick(in, vp, ModeSelect, nil)
		if q.SelOp != wantOps[i] {
			t.Errorf("tick %d: op = %v, want %v", i, q.SelOp, wantOps[i])
		}
	}

	// Command selects Remove, and releasing it also reverts to Set.
	in.Modifiers = Modifiers{Command: true}
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelOp != OpRemove {
		t.Errorf("command held: op = %v, want Remove", q.SelOp)
	}
	in.Modifiers = Modifiers{}
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelOp != OpSet {
		t.Errorf("command released: op = %v, want Set", q.SelOp)
	}

	// Both modifiers held is not a recognized chord; the op must hold.
	in.Modifiers = Modifiers{Shift: true}
	b.Tick(in, vp, ModeSelect, nil) // Add
	in.Modifiers = Modifiers{Shift: true, Command: true}
	if q := b.Tick(in, vp, ModeSelect, nil); q.SelOp != OpAdd {
		t.Errorf("shift+command: op = %v, want Add held", q.SelOp)
	}
}

func TestBuilderBrushRadiusScroll(t *testing.T) {
	b := NewBuilder()
	b.Selection().Tool = ToolBrush
	vp := testViewport()

	in := insideInput()
	in.ScrollY = 1
	q := b.Tick(in, vp, ModeSelect, nil)
	if q.BrushRadius != DefaultBrushRadius+1 {
		t.Errorf("radius after scroll up = %d, want %d", q.BrushRadius, DefaultBrushRadius+1)
	}

	in.ScrollY = -1
	q = b.Tick(in, vp, ModeSelect, nil)
	if q.BrushRadius != DefaultBrushRadius {
		t.Errorf("radius after scroll down = %d, want %d", q.BrushRadius, DefaultBrushRadius)
	}
}

func TestBuilderBrushRadiusClamped(t *testing.T) {
	b := NewBuilder(WithBrushRadiusBounds(5, 10))
	b.Selection().Tool = ToolBrush
	b.Selection().BrushRadius = 10
	vp := testViewport()

	in := insideInput()
	in.ScrollY = 1
	if q := b.Tick(in, vp, ModeSelect, nil); q.BrushRadius != 10 {
		t.Errorf("radius above max = %d, want clamped to 10", q.BrushRadius)
	}

	b.Selection().BrushRadius = 5
	in.ScrollY = -1
	if q := b.Tick(in, vp, ModeSelect, nil); q.BrushRadius != 5 {
		t.Errorf("radius below min = %d, want clamped to 5", q.BrushRadius)
	}
}

func TestBuilderRectToolIgnoresScroll(t *testing.T) {
	b := NewBuilder()
	vp := testViewport()

	in := insideInput()
	in.ScrollY = 3
	if q := b.Tick(in, vp, ModeSelect, nil); q.BrushRadius != DefaultBrushRadius {
		t.Errorf("rect tool scrolled radius to %d, want %d", q.BrushRadius, DefaultBrushRadius)
	}
}

func TestBuilderSelectionPointerOutside(t *testing.T) {
	b := NewBuilder()
	vp := testViewport()

	in := Input{Pointer: f32.Vec2{10, 10}, PointerValid: true}
	if q := b.Tick(in, vp, ModeSelect, nil); q.Type != TypeNone {
		t.Errorf("pointer outside: Type = %v, want None", q.Type)
	}

	in = Input{PointerValid: false}
	if q := b.Tick(in, vp, ModeSelect, nil); q.Type != TypeNone {
		t.Errorf("pointer invalid: Type = %v, want None", q.Type)
	}
}

func TestSelectionDescriptor(t *testing.T) {
	b := NewBuilder()
	b.Selection().Immediate = true
	vp := testViewport()

	in := insideInput()
	in.Modifiers = Modifiers{Shift: true}
	q := b.Tick(in, vp, ModeSelect, nil)

	d := q.Descriptor()
	if d.Kind != uint32(TypeSelection) {
		t.Errorf("Kind = %d, want %d", d.Kind, uint32(TypeSelection))
	}
	if d.Op != uint32(OpAdd) {
		t.Errorf("Op = %d, want %d", d.Op, uint32(OpAdd))
	}
	if d.Immediate != 1 {
		t.Errorf("Immediate = %d, want 1", d.Immediate)
	}
	if want := (f32.Vec2{300, 250}); d.Pos != want {
		t.Errorf("Pos = %v, want %v", d.Pos, want)
	}
}
