package scene

import (
	"fmt"

	"github.com/gogpu/splatview/gaussian"
)

// Model is one loaded splat model plus its scene bookkeeping.
type Model struct {
	// Name is the unique display name, derived from the file name.
	Name string

	// Points holds the decoded splat data.
	Points []gaussian.Point

	// Layout is the GPU compression layout chosen at load time.
	Layout gaussian.Layout

	// Visible toggles the model in the viewport.
	Visible bool

	// MaskBits is the packed result of the last mask evaluation, one
	// bit per point. Nil means no mask: every point included.
	MaskBits []uint32
}

// uniqueName returns name, suffixed with " (n)" if needed, so model
// names stay unique within the ordered list.
func uniqueName(models []*Model, name string) string {
	taken := func(n string) bool {
		for _, m := range models {
			if m.Name == n {
				return true
			}
		}
		return false
	}
	candidate := name
	for i := 1; taken(candidate); i++ {
		candidate = fmt.Sprintf("%s (%d)", name, i)
	}
	return candidate
}
