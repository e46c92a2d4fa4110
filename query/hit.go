package query

import "golang.org/x/image/math/f32"

// DefaultAlphaThreshold is the alpha window for the most-alpha policy:
// among the downloaded samples, those within this distance of the
// maximum alpha compete on depth. The value is inherited tuning and
// overridable per call.
const DefaultAlphaThreshold = 0.05

// HitMethod selects how a locate-hit probe disambiguates between the
// samples covering the probed pixel.
type HitMethod int

const (
	// MethodMostAlpha picks the closest sample within the alpha window
	// of the most opaque one.
	MethodMostAlpha HitMethod = iota
	// MethodClosest picks the sample nearest to the camera.
	MethodClosest
)

// String returns the string representation of HitMethod.
func (m HitMethod) String() string {
	switch m {
	case MethodMostAlpha:
		return "MostAlpha"
	case MethodClosest:
		return "Closest"
	default:
		return "Unknown"
	}
}

// HitSample is one downloaded candidate from the GPU hit pass: the
// world position of a point covering the probed pixel, its evaluated
// alpha there, and its depth along the view ray.
type HitSample struct {
	Pos   f32.Vec3
	Alpha float32
	Depth float32
}

// ResolveHit reduces the downloaded samples to a single position using
// the given policy. A probe with no samples resolves to the origin so
// the consumer always receives a defined position; the second return
// reports whether anything was hit. threshold <= 0 falls back to
// DefaultAlphaThreshold and applies only to MethodMostAlpha.
func ResolveHit(method HitMethod, samples []HitSample, threshold float32) (f32.Vec3, bool) {
	if len(samples) == 0 {
		return f32.Vec3{}, false
	}
	switch method {
	case MethodClosest:
		return closestHit(samples), true
	default:
		if threshold <= 0 {
			threshold = DefaultAlphaThreshold
		}
		return mostAlphaHit(samples, threshold), true
	}
}

func closestHit(samples []HitSample) f32.Vec3 {
	best := samples[0]
	for _, s := range samples[1:] {
		if s.Depth < best.Depth {
			best = s
		}
	}
	return best.Pos
}

// mostAlphaHit finds the maximum alpha, then returns the closest sample
// whose alpha falls within threshold of that maximum. The window keeps
// a barely-denser far sample from shadowing a near sample of almost
// equal opacity.
func mostAlphaHit(samples []HitSample, threshold float32) f32.Vec3 {
	maxAlpha := samples[0].Alpha
	for _, s := range samples[1:] {
		if s.Alpha > maxAlpha {
			maxAlpha = s.Alpha
		}
	}

	floor := maxAlpha - threshold
	var best HitSample
	found := false
	for _, s := range samples {
		if s.Alpha < floor {
			continue
		}
		if !found || s.Depth < best.Depth {
			best = s
			found = true
		}
	}
	return best.Pos
}
