package query

import (
	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
)

// Brush radius bounds. The limits come from the original tool tuning
// and are overridable via options.
const (
	DefaultMinBrushRadius = 1
	DefaultMaxBrushRadius = 200
	DefaultBrushRadius    = 40
)

// Mode is the pending user action driving the query state machine. It
// persists across ticks until satisfied or cancelled by the user; the
// per-tick Query is derived from it fresh every frame.
type Mode int

const (
	// ModeNone builds idle queries.
	ModeNone Mode = iota
	// ModeLocate waits for a click to probe a pixel.
	ModeLocate
	// ModeSelect drives the selection toolset.
	ModeSelect
)

// LocateRequest is the pending "locate hit" action: the policy to apply
// and the one-shot cell the resulting position is delivered to. The
// request persists until a valid click occurs; clicks outside the
// viewport leave it pending.
type LocateRequest struct {
	Method HitMethod
	Result *splatview.DeferredProducer[f32.Vec3]
}

// Selection holds the selection parameters that persist across ticks.
// The dialog edits Tool and Immediate; the builder owns Op and
// BrushRadius.
type Selection struct {
	Tool        Tool
	Op          Op
	Immediate   bool
	BrushRadius int
}

// Option configures a Builder.
type Option func(*Builder)

// WithBrushRadiusBounds overrides the brush radius clamp range.
func WithBrushRadiusBounds(minRadius, maxRadius int) Option {
	return func(b *Builder) {
		b.minBrush = minRadius
		b.maxBrush = maxRadius
	}
}

// Builder rebuilds the per-frame Query. One Builder lives per scene
// view; Tick is called exactly once per frame from the control
// goroutine.
type Builder struct {
	sel Selection

	minBrush int
	maxBrush int

	// selecting is true while a selection stroke is in progress, so a
	// held button does not restart the stroke every tick.
	selecting bool

	// prevMods is the previous tick's modifier snapshot; operation
	// transitions are edge-triggered on its difference from the
	// current snapshot.
	prevMods Modifiers
}

// NewBuilder returns a Builder with default selection parameters.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		sel: Selection{
			Tool:        ToolRect,
			Op:          OpSet,
			BrushRadius: DefaultBrushRadius,
		},
		minBrush: DefaultMinBrushRadius,
		maxBrush: DefaultMaxBrushRadius,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Selection exposes the persistent selection parameters for the UI.
func (b *Builder) Selection() *Selection {
	return &b.sel
}

// Tick builds this frame's query from the input snapshot. mode selects
// the pending action; locate must be non-nil when mode is ModeLocate.
// Exactly one Query is returned per call and the pipeline must consume
// it before the next Tick.
func (b *Builder) Tick(in Input, vp Viewport, mode Mode, locate *LocateRequest) Query {
	var q Query
	switch mode {
	case ModeLocate:
		q = b.tickLocate(in, vp, locate)
	case ModeSelect:
		q = b.tickSelect(in, vp)
	default:
		q = None()
	}

	// A tick that reverts to idle abandons any stroke in progress: the
	// pointer left the viewport or the mode changed, so the release will
	// never be observed. Without this a later press inside the viewport
	// would continue the dead stroke instead of starting a fresh one.
	if q.Type != TypeSelection {
		b.selecting = false
	}

	b.prevMods = in.Modifiers
	return q
}

// tickLocate reverts to the idle query on any tick without a valid
// click inside the viewport; the pending locate action itself persists.
func (b *Builder) tickLocate(in Input, vp Viewport, locate *LocateRequest) Query {
	if locate == nil || !in.PrimaryClicked || !in.PointerValid || !vp.Contains(in.Pointer) {
		return None()
	}
	return Query{
		Type:   TypeLocateHit,
		Pixel:  vp.Local(in.Pointer),
		Method: locate.Method,
		Result: locate.Result,
	}
}

func (b *Builder) tickSelect(in Input, vp Viewport) Query {
	if !in.PointerValid || !vp.Contains(in.Pointer) {
		return None()
	}
	pos := vp.Local(in.Pointer)

	// Brush radius follows the scroll wheel one step per tick.
	if b.sel.Tool == ToolBrush && in.ScrollY != 0 {
		step := 1
		if in.ScrollY < 0 {
			step = -1
		}
		b.sel.BrushRadius = clamp(b.sel.BrushRadius+step, b.minBrush, b.maxBrush)
	}

	// Operation transitions commit only on the tick where the modifier
	// snapshot differs from the previous tick's, so a held modifier
	// does not clobber the live operation every frame.
	switch {
	case in.Modifiers.ShiftOnly():
		b.sel.Op = OpAdd
	case in.Modifiers.CommandOnly():
		b.sel.Op = OpRemove
	case b.prevMods.ShiftOnly() || b.prevMods.CommandOnly():
		b.sel.Op = OpSet
	}

	phase := PhaseUpdate
	switch {
	case in.PrimaryPressed && !b.selecting:
		phase = PhaseStart
		b.selecting = true
	case in.PrimaryReleased && b.selecting:
		phase = PhaseEnd
		b.selecting = false
	}

	return Query{
		Type:        TypeSelection,
		SelPhase:    phase,
		SelTool:     b.sel.Tool,
		SelOp:       b.sel.Op,
		Immediate:   b.sel.Immediate,
		BrushRadius: b.sel.BrushRadius,
		Pos:         pos,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
