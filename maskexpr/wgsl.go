package maskexpr

import (
	"fmt"
	"strings"
)

// WGSLExpr renders the expression as a WGSL boolean expression over
// `shape_contains(i, p)` calls. The GPU mask evaluator splices the
// result into its compute kernel, where `p` is the point position and
// `shape_contains` tests membership against the shape pod array.
//
// A nil op renders as "true" (no restriction: every point masked in).
func WGSLExpr(op *Op) string {
	var b strings.Builder
	writeWGSL(&b, op)
	return b.String()
}

func writeWGSL(b *strings.Builder, op *Op) {
	if op == nil {
		b.WriteString("true")
		return
	}
	switch op.Kind {
	case KindShape:
		fmt.Fprintf(b, "shape_contains(%du, p)", op.Shape)
	case KindComplement:
		b.WriteString("!(")
		writeWGSL(b, op.Left)
		b.WriteString(")")
	case KindUnion:
		writeWGSLBinary(b, op, "||")
	case KindIntersection:
		writeWGSLBinary(b, op, "&&")
	case KindDifference:
		// a - b == a && !b
		b.WriteString("(")
		writeWGSL(b, op.Left)
		b.WriteString(" && !(")
		writeWGSL(b, op.Right)
		b.WriteString("))")
	case KindSymmetricDifference:
		// Exactly one: boolean inequality.
		writeWGSLBinary(b, op, "!=")
	}
}

func writeWGSLBinary(b *strings.Builder, op *Op, operator string) {
	b.WriteString("(")
	writeWGSL(b, op.Left)
	b.WriteString(" ")
	b.WriteString(operator)
	b.WriteString(" ")
	writeWGSL(b, op.Right)
	b.WriteString(")")
}
