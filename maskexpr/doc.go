// Package maskexpr implements the boolean mask expression language of the
// splat editor: a small set algebra over numbered geometric shapes.
//
// The grammar, from lowest to highest precedence:
//
//	|   union
//	&   intersection
//	-   difference
//	^   symmetric difference
//	!   complement (unary)
//	( ) grouping
//	N   non-negative integer shape reference
//
// All binary operators are left-associative. Whitespace between tokens is
// insignificant and the whole input must be consumed. An empty or blank
// input parses to nil, meaning "no restriction".
//
// A parsed tree is validated against the current shape count with
// [Op.ValidateShapes], then compiled with [Compile] into a reference tree
// over GPU shape pods for the mask evaluator.
package maskexpr
