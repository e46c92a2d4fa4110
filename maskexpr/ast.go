package maskexpr

import (
	"fmt"
	"strconv"
)

// Kind identifies an operation in a mask expression tree.
type Kind int

const (
	// KindShape references a shape by positional index.
	KindShape Kind = iota
	// KindUnion is the set union of two operands.
	KindUnion
	// KindIntersection is the set intersection of two operands.
	KindIntersection
	// KindDifference removes the right operand from the left.
	KindDifference
	// KindSymmetricDifference keeps points in exactly one operand.
	KindSymmetricDifference
	// KindComplement inverts its single operand.
	KindComplement
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindShape:
		return "Shape"
	case KindUnion:
		return "Union"
	case KindIntersection:
		return "Intersection"
	case KindDifference:
		return "Difference"
	case KindSymmetricDifference:
		return "SymmetricDifference"
	case KindComplement:
		return "Complement"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Op is a node of a parsed mask expression. The tree is immutable after
// parsing; the editor replaces it wholesale on every successful parse.
//
// Binary kinds use Left and Right. KindComplement uses Left only.
// KindShape uses Shape only.
type Op struct {
	Kind  Kind
	Left  *Op
	Right *Op
	Shape int
}

// ShapeRef returns a shape reference node.
func ShapeRef(index int) *Op {
	return &Op{Kind: KindShape, Shape: index}
}

// Union returns the union of two operands.
func Union(left, right *Op) *Op {
	return &Op{Kind: KindUnion, Left: left, Right: right}
}

// Intersection returns the intersection of two operands.
func Intersection(left, right *Op) *Op {
	return &Op{Kind: KindIntersection, Left: left, Right: right}
}

// Difference returns the left operand minus the right.
func Difference(left, right *Op) *Op {
	return &Op{Kind: KindDifference, Left: left, Right: right}
}

// SymmetricDifference returns points in exactly one of the operands.
func SymmetricDifference(left, right *Op) *Op {
	return &Op{Kind: KindSymmetricDifference, Left: left, Right: right}
}

// Complement returns the complement of the operand.
func Complement(op *Op) *Op {
	return &Op{Kind: KindComplement, Left: op}
}

// ShapeIndexError reports a shape reference outside the current shape
// list. It is non-fatal: the editor shows the offending index and keeps
// the previous mask until the expression or the shape list changes.
type ShapeIndexError struct {
	// Index is the first out-of-range index found depth-first.
	Index int
}

// Error implements the error interface.
func (e *ShapeIndexError) Error() string {
	return fmt.Sprintf("maskexpr: shape index %d out of range", e.Index)
}

// ValidateShapes walks the tree depth-first and returns a
// *ShapeIndexError for the first shape reference at or beyond count.
// The traversal is fail-fast, not exhaustive: stale indices after a
// shape removal surface one at a time.
func (op *Op) ValidateShapes(count int) error {
	if op == nil {
		return nil
	}
	switch op.Kind {
	case KindShape:
		if op.Shape >= count {
			return &ShapeIndexError{Index: op.Shape}
		}
		return nil
	case KindComplement:
		return op.Left.ValidateShapes(count)
	default:
		if err := op.Left.ValidateShapes(count); err != nil {
			return err
		}
		return op.Right.ValidateShapes(count)
	}
}

// String renders the expression with explicit parentheses. Useful for
// debugging and the splatctl tree dump; not guaranteed to round-trip
// formatting, only meaning.
func (op *Op) String() string {
	if op == nil {
		return ""
	}
	switch op.Kind {
	case KindShape:
		return strconv.Itoa(op.Shape)
	case KindComplement:
		return "!" + op.Left.String()
	case KindUnion:
		return "(" + op.Left.String() + " | " + op.Right.String() + ")"
	case KindIntersection:
		return "(" + op.Left.String() + " & " + op.Right.String() + ")"
	case KindDifference:
		return "(" + op.Left.String() + " - " + op.Right.String() + ")"
	case KindSymmetricDifference:
		return "(" + op.Left.String() + " ^ " + op.Right.String() + ")"
	default:
		return "?"
	}
}
