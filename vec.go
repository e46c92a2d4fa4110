package splatview

import (
	"math"

	"golang.org/x/image/math/f32"
)

// Vector helpers over the x/image f32 array types used throughout the
// viewer PODs. f32.Vec2/Vec3/Vec4 are plain arrays with no methods, so
// the operations live here as package functions.

// Sub2 returns the difference of two 2D vectors.
func Sub2(a, b f32.Vec2) f32.Vec2 {
	return f32.Vec2{a[0] - b[0], a[1] - b[1]}
}

// Add3 returns the sum of two 3D vectors.
func Add3(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub3 returns the difference of two 3D vectors.
func Sub3(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale3 returns the vector scaled by a scalar.
func Scale3(v f32.Vec3, s float32) f32.Vec3 {
	return f32.Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot3 returns the dot product of two 3D vectors.
func Dot3(a, b f32.Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Len3 returns the length (magnitude) of a 3D vector.
func Len3(v f32.Vec3) float32 {
	return float32(math.Sqrt(float64(Dot3(v, v))))
}

// DistSq3 returns the squared distance between two points.
// Faster than Len3(Sub3(a, b)) when only comparing magnitudes.
func DistSq3(a, b f32.Vec3) float32 {
	d := Sub3(a, b)
	return Dot3(d, d)
}

// Normalize3 returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func Normalize3(v f32.Vec3) f32.Vec3 {
	l := Len3(v)
	if l == 0 {
		return v
	}
	return Scale3(v, 1/l)
}

// EulerToQuat converts ZYX Euler angles in degrees to a quaternion (x, y,
// z, w). This matches the rotation convention of the shape editor, which
// exposes per-axis degree fields to the user.
func EulerToQuat(deg f32.Vec3) f32.Vec4 {
	rx := float64(deg[0]) * math.Pi / 180
	ry := float64(deg[1]) * math.Pi / 180
	rz := float64(deg[2]) * math.Pi / 180

	cx, sx := math.Cos(rx/2), math.Sin(rx/2)
	cy, sy := math.Cos(ry/2), math.Sin(ry/2)
	cz, sz := math.Cos(rz/2), math.Sin(rz/2)

	return f32.Vec4{
		float32(sx*cy*cz - cx*sy*sz),
		float32(cx*sy*cz + sx*cy*sz),
		float32(cx*cy*sz - sx*sy*cz),
		float32(cx*cy*cz + sx*sy*sz),
	}
}
