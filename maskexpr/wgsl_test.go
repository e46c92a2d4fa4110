package maskexpr

import "testing"

func TestWGSLExpr(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"0", "shape_contains(0u, p)"},
		{"!0", "!(shape_contains(0u, p))"},
		{"0 | 1", "(shape_contains(0u, p) || shape_contains(1u, p))"},
		{"0 & 1", "(shape_contains(0u, p) && shape_contains(1u, p))"},
		{"0 - 1", "(shape_contains(0u, p) && !(shape_contains(1u, p)))"},
		{"0 ^ 1", "(shape_contains(0u, p) != shape_contains(1u, p))"},
	}
	for _, tt := range tests {
		op, err := Parse(tt.expr)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.expr, err)
		}
		if got := WGSLExpr(op); got != tt.want {
			t.Errorf("WGSLExpr(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestWGSLExprNil(t *testing.T) {
	if got := WGSLExpr(nil); got != "true" {
		t.Errorf("WGSLExpr(nil) = %q, want \"true\"", got)
	}
}
