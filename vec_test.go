package splatview

import (
	"math"
	"testing"

	"golang.org/x/image/math/f32"
)

func TestSub2(t *testing.T) {
	got := Sub2(f32.Vec2{5, 3}, f32.Vec2{2, 1})
	want := f32.Vec2{3, 2}
	if got != want {
		t.Errorf("Sub2() = %v, want %v", got, want)
	}
}

func TestSub3(t *testing.T) {
	got := Sub3(f32.Vec3{3, 2, 1}, f32.Vec3{1, 1, 1})
	want := f32.Vec3{2, 1, 0}
	if got != want {
		t.Errorf("Sub3() = %v, want %v", got, want)
	}
}

func TestDot3(t *testing.T) {
	got := Dot3(f32.Vec3{1, 2, 3}, f32.Vec3{4, 5, 6})
	if got != 32 {
		t.Errorf("Dot3() = %v, want 32", got)
	}
}

func TestLen3(t *testing.T) {
	got := Len3(f32.Vec3{3, 4, 0})
	if math.Abs(float64(got)-5) > 1e-6 {
		t.Errorf("Len3() = %v, want 5", got)
	}
}

func TestDistSq3(t *testing.T) {
	got := DistSq3(f32.Vec3{1, 0, 0}, f32.Vec3{4, 4, 0})
	if got != 25 {
		t.Errorf("DistSq3() = %v, want 25", got)
	}
}

func TestNormalize3(t *testing.T) {
	v := Normalize3(f32.Vec3{0, 0, 2})
	want := f32.Vec3{0, 0, 1}
	if v != want {
		t.Errorf("Normalize3() = %v, want %v", v, want)
	}

	zero := Normalize3(f32.Vec3{})
	if zero != (f32.Vec3{}) {
		t.Errorf("Normalize3(zero) = %v, want zero vector", zero)
	}
}

func TestEulerToQuatIdentity(t *testing.T) {
	q := EulerToQuat(f32.Vec3{0, 0, 0})
	want := f32.Vec4{0, 0, 0, 1}
	for i := range q {
		if math.Abs(float64(q[i]-want[i])) > 1e-6 {
			t.Fatalf("EulerToQuat(0) = %v, want %v", q, want)
		}
	}
}

func TestEulerToQuatUnitLength(t *testing.T) {
	q := EulerToQuat(f32.Vec3{30, 45, 60})
	l := math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3]))
	if math.Abs(l-1) > 1e-5 {
		t.Errorf("quaternion length = %v, want 1", l)
	}
}
