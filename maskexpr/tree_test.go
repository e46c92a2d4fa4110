package maskexpr

import (
	"testing"

	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
)

// twoBoxes returns pods for a box around the origin (index 0) and a box
// around x=10 (index 1).
func twoBoxes() []splatview.ShapePod {
	a := splatview.NewShape()
	b := splatview.NewShape()
	b.Pos = f32.Vec3{10, 0, 0}
	return splatview.Pods([]splatview.Shape{a, b})
}

func TestCompileNil(t *testing.T) {
	if n := Compile(nil, nil); n != nil {
		t.Errorf("Compile(nil) = %v, want nil", n)
	}
	var n *EvalNode
	if !n.Contains(f32.Vec3{5, 5, 5}) {
		t.Error("nil tree should contain every point")
	}
}

func TestCompileBorrowsPods(t *testing.T) {
	pods := twoBoxes()
	n := Compile(ShapeRef(1), pods)
	if n.Shape != &pods[1] {
		t.Error("compiled leaf does not point into the caller's pod slice")
	}
}

func TestEvalSetAlgebra(t *testing.T) {
	pods := twoBoxes()
	origin := f32.Vec3{0, 0, 0}
	far := f32.Vec3{10, 0, 0}
	nowhere := f32.Vec3{5, 5, 5}

	tests := []struct {
		expr string
		pt   f32.Vec3
		want bool
	}{
		{"0 | 1", origin, true},
		{"0 | 1", far, true},
		{"0 | 1", nowhere, false},
		{"0 & 1", origin, false},
		{"0 - 1", origin, true},
		{"0 - 0", origin, false},
		{"0 ^ 1", origin, true},
		{"0 ^ 0", origin, false},
		{"!0", origin, false},
		{"!0", nowhere, true},
		{"!(0 | 1)", nowhere, true},
	}
	for _, tt := range tests {
		op, err := Parse(tt.expr)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.expr, err)
		}
		if err := op.ValidateShapes(len(pods)); err != nil {
			t.Fatalf("ValidateShapes(%q) error = %v", tt.expr, err)
		}
		n := Compile(op, pods)
		if got := n.Contains(tt.pt); got != tt.want {
			t.Errorf("%q Contains(%v) = %v, want %v", tt.expr, tt.pt, got, tt.want)
		}
	}
}
