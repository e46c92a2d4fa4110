package gaussian

import "golang.org/x/image/math/f32"

// Point is one weighted, colored, oriented Gaussian primitive of the
// reconstructed scene.
type Point struct {
	// Pos is the center position.
	Pos f32.Vec3

	// Normal is carried through from the source file; the renderer
	// ignores it but exports preserve it.
	Normal f32.Vec3

	// ColorDC holds the zeroth-order spherical harmonics coefficients.
	ColorDC f32.Vec3

	// Opacity is the raw (pre-sigmoid) opacity.
	Opacity float32

	// Scale holds the per-axis log scale.
	Scale f32.Vec3

	// Rot is the orientation quaternion (w, x, y, z — file order).
	Rot f32.Vec4
}

// Edit flags. A zero EditPod leaves the point untouched.
const (
	// EditFlagEnabled marks the pod as carrying an edit.
	EditFlagEnabled uint32 = 1 << iota
	// EditFlagHidden drops the point entirely.
	EditFlagHidden
)

// EditPodSize is the byte stride of one EditPod in the GPU edit buffer.
const EditPodSize = 32

// EditPod is the per-point edit override downloaded from the GPU edit
// buffer. Layout matches the shader side: one flag word and an RGBA
// multiplier.
type EditPod struct {
	Flags uint32
	_     [3]uint32
	// Color multiplies ColorDC component-wise.
	Color f32.Vec3
	// Opacity multiplies the point opacity.
	Opacity float32
}

// Enabled reports whether the pod carries an edit.
func (e EditPod) Enabled() bool {
	return e.Flags&EditFlagEnabled != 0
}

// Hidden reports whether the edit hides the point.
func (e EditPod) Hidden() bool {
	return e.Flags&EditFlagEnabled != 0 && e.Flags&EditFlagHidden != 0
}

// Apply returns the point with the edit baked in. Hidden points are the
// caller's concern (they are dropped, not modified).
func (e EditPod) Apply(p Point) Point {
	if !e.Enabled() {
		return p
	}
	p.ColorDC = f32.Vec3{
		p.ColorDC[0] * e.Color[0],
		p.ColorDC[1] * e.Color[1],
		p.ColorDC[2] * e.Color[2],
	}
	p.Opacity *= e.Opacity
	return p
}

// MaskBit reports the mask bit for point index i in a packed bit buffer
// as downloaded from the GPU (one u32 per 32 points, LSB first).
func MaskBit(bits []uint32, i int) bool {
	word := i / 32
	if word >= len(bits) {
		return false
	}
	return bits[word]>>(i%32)&1 == 1
}

// MaskWords returns the number of u32 words needed to hold one bit per
// point.
func MaskWords(points int) int {
	return (points + 31) / 32
}
