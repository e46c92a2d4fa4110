package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/splatview/query"
)

// HitSampleSize is the byte stride of one hit sample in the GPU results
// buffer.
const HitSampleSize = 32

// hitPod is the GPU-layout form of one hit sample as written by the
// external query pipeline: world position, evaluated alpha, view-ray
// depth, padded to a 32-byte stride.
type hitPod struct {
	Pos   f32.Vec3
	Alpha float32
	Depth float32
	_     [3]float32
}

// DecodeHitCount decodes the downloaded hit counter buffer (a single
// little-endian u32).
func DecodeHitCount(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("gpu: hit count buffer too short: %d bytes", len(data))
	}
	return int(binary.LittleEndian.Uint32(data)), nil
}

// DecodeHitSamples decodes count samples from the downloaded hit
// results buffer.
func DecodeHitSamples(data []byte, count int) ([]query.HitSample, error) {
	pods := make([]hitPod, count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, pods); err != nil {
		return nil, fmt.Errorf("gpu: decode hit samples: %w", err)
	}
	samples := make([]query.HitSample, count)
	for i, p := range pods {
		samples[i] = query.HitSample{Pos: p.Pos, Alpha: p.Alpha, Depth: p.Depth}
	}
	return samples, nil
}
