package gaussian

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// plyProperties lists the native point-format properties in file order.
var plyProperties = []string{
	"x", "y", "z",
	"nx", "ny", "nz",
	"f_dc_0", "f_dc_1", "f_dc_2",
	"opacity",
	"scale_0", "scale_1", "scale_2",
	"rot_0", "rot_1", "rot_2", "rot_3",
}

// WritePLY serializes points in the native binary little-endian point
// format.
//
// If edits is non-nil it must be one pod per point: hidden points are
// dropped and the remaining edits are baked into the written values. If
// maskBits is non-nil (packed one bit per point) masked-out points are
// dropped. Both filters may be active at once; a point survives only if
// it passes both.
func WritePLY(w io.Writer, points []Point, edits []EditPod, maskBits []uint32) error {
	if edits != nil && len(edits) != len(points) {
		return fmt.Errorf("gaussian: %d edit pods for %d points", len(edits), len(points))
	}

	kept := make([]Point, 0, len(points))
	for i, p := range points {
		if maskBits != nil && !MaskBit(maskBits, i) {
			continue
		}
		if edits != nil {
			if edits[i].Hidden() {
				continue
			}
			p = edits[i].Apply(p)
		}
		kept = append(kept, p)
	}

	bw := bufio.NewWriter(w)
	if err := writePLYHeader(bw, len(kept)); err != nil {
		return err
	}

	for _, p := range kept {
		vals := [17]float32{
			p.Pos[0], p.Pos[1], p.Pos[2],
			p.Normal[0], p.Normal[1], p.Normal[2],
			p.ColorDC[0], p.ColorDC[1], p.ColorDC[2],
			p.Opacity,
			p.Scale[0], p.Scale[1], p.Scale[2],
			p.Rot[0], p.Rot[1], p.Rot[2], p.Rot[3],
		}
		if err := binary.Write(bw, binary.LittleEndian, vals[:]); err != nil {
			return fmt.Errorf("gaussian: write point: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("gaussian: flush: %w", err)
	}
	return nil
}

func writePLYHeader(w io.Writer, count int) error {
	if _, err := fmt.Fprintf(w, "ply\nformat binary_little_endian 1.0\nelement vertex %d\n", count); err != nil {
		return fmt.Errorf("gaussian: write header: %w", err)
	}
	for _, name := range plyProperties {
		if _, err := fmt.Fprintf(w, "property float %s\n", name); err != nil {
			return fmt.Errorf("gaussian: write header: %w", err)
		}
	}
	if _, err := io.WriteString(w, "end_header\n"); err != nil {
		return fmt.Errorf("gaussian: write header: %w", err)
	}
	return nil
}
