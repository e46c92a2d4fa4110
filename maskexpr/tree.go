package maskexpr

import (
	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
)

// EvalNode is a mask expression compiled against a shape table. Shape
// leaves hold pointers into the caller's pod slice — Compile restructures
// the tree but never copies shape data. The node tree is handed to the
// mask evaluator (GPU or the CPU reference below).
type EvalNode struct {
	Kind  Kind
	Left  *EvalNode
	Right *EvalNode
	Shape *splatview.ShapePod
}

// Compile transforms a validated expression into a reference tree over
// pods. The expression must have passed ValidateShapes(len(pods));
// Compile indexes the slice directly.
//
// A nil op compiles to a nil tree, meaning no restriction.
func Compile(op *Op, pods []splatview.ShapePod) *EvalNode {
	if op == nil {
		return nil
	}
	switch op.Kind {
	case KindShape:
		return &EvalNode{Kind: KindShape, Shape: &pods[op.Shape]}
	case KindComplement:
		return &EvalNode{Kind: KindComplement, Left: Compile(op.Left, pods)}
	default:
		return &EvalNode{
			Kind:  op.Kind,
			Left:  Compile(op.Left, pods),
			Right: Compile(op.Right, pods),
		}
	}
}

// Contains evaluates the mask at a point. This is the CPU reference of
// the GPU evaluator, used by the offline export path and the tests. A
// nil tree contains every point.
func (n *EvalNode) Contains(pt f32.Vec3) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case KindShape:
		return n.Shape.Contains(pt)
	case KindUnion:
		return n.Left.Contains(pt) || n.Right.Contains(pt)
	case KindIntersection:
		return n.Left.Contains(pt) && n.Right.Contains(pt)
	case KindDifference:
		return n.Left.Contains(pt) && !n.Right.Contains(pt)
	case KindSymmetricDifference:
		return n.Left.Contains(pt) != n.Right.Contains(pt)
	case KindComplement:
		return !n.Left.Contains(pt)
	default:
		return false
	}
}
