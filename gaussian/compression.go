package gaussian

import "fmt"

// ShCompression selects the storage format of spherical harmonics
// coefficients in the GPU point buffer.
type ShCompression int

const (
	// ShNone stores full f32 coefficients.
	ShNone ShCompression = iota
	// ShHalf stores f16 coefficients.
	ShHalf
	// ShNorm8 stores min/max-normalized u8 coefficients.
	ShNorm8
)

// String returns the string representation of ShCompression.
func (c ShCompression) String() string {
	switch c {
	case ShNone:
		return "None"
	case ShHalf:
		return "Half"
	case ShNorm8:
		return "Norm8"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Cov3dCompression selects the storage format of the covariance terms.
type Cov3dCompression int

const (
	// Cov3dNone stores full f32 covariance terms.
	Cov3dNone Cov3dCompression = iota
	// Cov3dHalf stores f16 covariance terms.
	Cov3dHalf
)

// String returns the string representation of Cov3dCompression.
func (c Cov3dCompression) String() string {
	switch c {
	case Cov3dNone:
		return "None"
	case Cov3dHalf:
		return "Half"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Layout pairs the two orthogonal compression choices. It is chosen once
// at model-load time; everything downstream (buffer sizing, shader
// constants) reads the resolved spec from the table instead of
// re-dispatching on the pair.
type Layout struct {
	Sh    ShCompression
	Cov3d Cov3dCompression
}

// layoutSpec is the resolved byte layout for one compression pair.
type layoutSpec struct {
	shBytes    int // 45 SH coefficients (15 × vec3)
	cov3dBytes int // 6 covariance terms
}

// layoutSpecs is the closed dispatch table over the compression pairs.
var layoutSpecs = map[Layout]layoutSpec{
	{ShNone, Cov3dNone}:  {shBytes: 45 * 4, cov3dBytes: 6 * 4},
	{ShNone, Cov3dHalf}:  {shBytes: 45 * 4, cov3dBytes: 6 * 2},
	{ShHalf, Cov3dNone}:  {shBytes: 46 * 2, cov3dBytes: 6 * 4}, // padded to even count
	{ShHalf, Cov3dHalf}:  {shBytes: 46 * 2, cov3dBytes: 6 * 2},
	{ShNorm8, Cov3dNone}: {shBytes: 48 + 8, cov3dBytes: 6 * 4}, // u8 coeffs + min/max
	{ShNorm8, Cov3dHalf}: {shBytes: 48 + 8, cov3dBytes: 6 * 2},
}

// pointBaseBytes covers position, opacity and the packed rotation that
// every layout stores uncompressed.
const pointBaseBytes = 3*4 + 4 + 4*4

// Valid reports whether the layout is a known compression pair.
func (l Layout) Valid() bool {
	_, ok := layoutSpecs[l]
	return ok
}

// PointStride returns the per-point byte stride of the GPU point buffer
// for this layout. Unknown pairs fall back to the uncompressed stride.
func (l Layout) PointStride() int {
	spec, ok := layoutSpecs[l]
	if !ok {
		spec = layoutSpecs[Layout{ShNone, Cov3dNone}]
	}
	return pointBaseBytes + spec.shBytes + spec.cov3dBytes
}

// BufferSize returns the GPU point buffer size for n points.
func (l Layout) BufferSize(n int) uint64 {
	return uint64(n) * uint64(l.PointStride())
}

// String returns "sh=X cov3d=Y" for logs.
func (l Layout) String() string {
	return fmt.Sprintf("sh=%s cov3d=%s", l.Sh, l.Cov3d)
}
