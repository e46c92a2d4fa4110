package query

import (
	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
)

// Type discriminates the per-frame query.
type Type int

const (
	// TypeNone is the idle query; it still produces a no-op descriptor.
	TypeNone Type = iota
	// TypeLocateHit probes a single pixel for the nearest/densest point.
	TypeLocateHit
	// TypeSelection drives the selection toolset.
	TypeSelection
)

// String returns the string representation of Type.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeLocateHit:
		return "LocateHit"
	case TypeSelection:
		return "Selection"
	default:
		return "Unknown"
	}
}

// Tool is the selection tool started on a fresh press.
type Tool int

const (
	// ToolRect drags a rectangle.
	ToolRect Tool = iota
	// ToolBrush paints with a circular brush.
	ToolBrush
)

// Op is the selection operation applied to the point set.
type Op int

const (
	// OpSet replaces the selection.
	OpSet Op = iota
	// OpAdd extends the selection (shift held).
	OpAdd
	// OpRemove shrinks the selection (command held).
	OpRemove
)

// String returns the string representation of Op.
func (o Op) String() string {
	switch o {
	case OpSet:
		return "Set"
	case OpAdd:
		return "Add"
	case OpRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Phase is the selection action for one tick.
type Phase int

const (
	// PhaseUpdate continues the current stroke (or hovers): position
	// and operation still update every tick.
	PhaseUpdate Phase = iota
	// PhaseStart begins a stroke with the chosen tool; emitted on the
	// press tick only.
	PhaseStart
	// PhaseEnd finishes the stroke; emitted exactly once, on the
	// release tick.
	PhaseEnd
)

// Query is the single per-frame interaction query. It is created and
// consumed within one tick; the builder keeps only the previous tick's
// value as a snapshot for edge detection.
type Query struct {
	Type Type

	// LocateHit fields.

	// Pixel is the probed pixel in viewport coordinates.
	Pixel f32.Vec2
	// Method selects the hit disambiguation policy.
	Method HitMethod
	// Result receives the located position. The producer is shared by
	// every tick of the same pending locate action; a failed send is
	// logged, never escalated.
	Result *splatview.DeferredProducer[f32.Vec3]

	// Selection fields.

	// SelPhase is the selection action for this tick.
	SelPhase Phase
	// SelTool is the tool to start; meaningful when SelPhase is
	// PhaseStart.
	SelTool Tool
	// SelOp is the live selection operation.
	SelOp Op
	// Immediate applies the selection without the preview texture.
	Immediate bool
	// BrushRadius is the brush radius in pixels; meaningful when the
	// active tool is the brush.
	BrushRadius int
	// Pos is the pointer position in viewport coordinates.
	Pos f32.Vec2
}

// None returns the idle query.
func None() Query {
	return Query{Type: TypeNone}
}

// Descriptor is the flat query layout handed to the external GPU query
// pipeline every tick.
type Descriptor struct {
	Kind        uint32
	Op          uint32
	BrushRadius uint32
	Immediate   uint32
	Pos         f32.Vec2
}

// Descriptor flattens the query. The idle query flattens to the zero
// descriptor, so the pipeline always has a defined input.
func (q Query) Descriptor() Descriptor {
	switch q.Type {
	case TypeLocateHit:
		return Descriptor{Kind: uint32(TypeLocateHit), Pos: q.Pixel}
	case TypeSelection:
		var imm uint32
		if q.Immediate {
			imm = 1
		}
		return Descriptor{
			Kind:        uint32(TypeSelection),
			Op:          uint32(q.SelOp),
			BrushRadius: uint32(q.BrushRadius),
			Immediate:   imm,
			Pos:         q.Pos,
		}
	default:
		return Descriptor{}
	}
}
