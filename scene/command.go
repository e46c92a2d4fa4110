package scene

import (
	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
	"github.com/gogpu/splatview/gaussian"
)

// Command is one message on the session's command channel. Commands are
// produced by UI and loader goroutines and consumed by the control
// goroutine at the top of each Tick.
type Command interface {
	isCommand()
}

// AddModel appends a loaded model to the scene. A duplicate name gets a
// " (n)" suffix; the first model becomes the selection.
type AddModel struct {
	Name   string
	Points []gaussian.Point
	Layout gaussian.Layout
}

// RemoveModel removes the named model. Removing the selected model
// moves the selection to the first remaining one.
type RemoveModel struct {
	Name string
}

// EvaluateMask re-evaluates the mask expression over the selected
// model. Shapes is the ordered shape list the expression indexes into;
// an empty source clears the mask.
type EvaluateMask struct {
	Source string
	Shapes []splatview.Shape
}

// UpdateLocateHit replaces the pipeline's hit markers, after a marker
// was added, removed, or toggled.
type UpdateLocateHit struct {
	Markers []f32.Vec3
}

func (AddModel) isCommand()        {}
func (RemoveModel) isCommand()     {}
func (EvaluateMask) isCommand()    {}
func (UpdateLocateHit) isCommand() {}
