package splatview

import "golang.org/x/image/math/f32"

// ShapeKind identifies the geometric primitive of a mask shape.
type ShapeKind uint32

const (
	// ShapeBox is an axis-aligned unit box scaled and rotated into place.
	ShapeBox ShapeKind = iota
	// ShapeEllipsoid is a unit sphere scaled and rotated into place.
	ShapeEllipsoid
)

// String returns the string representation of ShapeKind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "Box"
	case ShapeEllipsoid:
		return "Ellipsoid"
	default:
		return "Unknown"
	}
}

// Shape is a positioned, rotated and scaled mask primitive as edited by
// the user. Shapes live in an ordered list; mask expressions reference
// them by positional index. Removing a shape shifts all higher indices —
// the expression is deliberately not rewritten, the next validation pass
// reports the stale index instead.
type Shape struct {
	// Kind is the primitive type.
	Kind ShapeKind

	// Pos is the center position in scene space.
	Pos f32.Vec3

	// EulerDeg holds the per-axis rotation in degrees, as edited.
	EulerDeg f32.Vec3

	// Scale holds the per-axis half extents.
	Scale f32.Vec3

	// Color is the display color (RGBA, 0..1).
	Color f32.Vec4

	// Visible toggles the shape outline in the viewport. Invisible
	// shapes still participate in mask evaluation.
	Visible bool
}

// NewShape returns a unit box at the origin, visible, with a neutral
// display color.
func NewShape() Shape {
	return Shape{
		Kind:    ShapeBox,
		Scale:   f32.Vec3{1, 1, 1},
		Color:   f32.Vec4{1, 1, 1, 0.5},
		Visible: true,
	}
}

// ShapePod is the GPU-layout form of a Shape handed to the mask
// evaluator. Fields are padded to 16-byte boundaries to match the WGSL
// struct emitted by maskexpr.
type ShapePod struct {
	Kind ShapeKind
	_    [3]uint32
	Pos  f32.Vec3
	_    uint32
	// Rotation is the quaternion (x, y, z, w) derived from EulerDeg.
	Rotation f32.Vec4
	Scale    f32.Vec3
	_        uint32
	Color    f32.Vec4
}

// Pod converts the shape to its GPU layout.
func (s Shape) Pod() ShapePod {
	return ShapePod{
		Kind:     s.Kind,
		Pos:      s.Pos,
		Rotation: EulerToQuat(s.EulerDeg),
		Scale:    s.Scale,
		Color:    s.Color,
	}
}

// Pods converts an ordered shape list to GPU layout, preserving indices.
func Pods(shapes []Shape) []ShapePod {
	pods := make([]ShapePod, len(shapes))
	for i, s := range shapes {
		pods[i] = s.Pod()
	}
	return pods
}

// Contains reports whether the point lies inside the shape. This is the
// CPU reference of the membership test the GPU evaluator performs per
// point; the offline export path and the tests use it.
func (p *ShapePod) Contains(pt f32.Vec3) bool {
	// Transform into local space: inverse-rotate the offset, then divide
	// by the half extents.
	local := rotateByQuatInv(Sub3(pt, p.Pos), p.Rotation)
	if p.Scale[0] == 0 || p.Scale[1] == 0 || p.Scale[2] == 0 {
		return false
	}
	x := local[0] / p.Scale[0]
	y := local[1] / p.Scale[1]
	z := local[2] / p.Scale[2]

	switch p.Kind {
	case ShapeBox:
		return x >= -1 && x <= 1 && y >= -1 && y <= 1 && z >= -1 && z <= 1
	case ShapeEllipsoid:
		return x*x+y*y+z*z <= 1
	default:
		return false
	}
}

// rotateByQuatInv rotates v by the conjugate of unit quaternion q.
func rotateByQuatInv(v f32.Vec3, q f32.Vec4) f32.Vec3 {
	return rotateByQuat(v, f32.Vec4{-q[0], -q[1], -q[2], q[3]})
}

// rotateByQuat rotates v by unit quaternion q using the expanded
// sandwich product q*v*q^-1.
func rotateByQuat(v f32.Vec3, q f32.Vec4) f32.Vec3 {
	u := f32.Vec3{q[0], q[1], q[2]}
	s := q[3]

	uv := cross3(u, v)
	uuv := cross3(u, uv)
	return Add3(v, Scale3(Add3(Scale3(uv, s), uuv), 2))
}

func cross3(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
