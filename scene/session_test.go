package scene

import (
	"errors"
	"testing"

	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
	"github.com/gogpu/splatview/gaussian"
	"github.com/gogpu/splatview/maskexpr"
	"github.com/gogpu/splatview/query"
)

// fakePipeline records submissions and lets the test script readbacks
// and mask evaluations.
type fakePipeline struct {
	descriptors []query.Descriptor

	hitsProducer *splatview.DeferredProducer[[]query.HitSample]

	maskBits []uint32
	maskErr  error
	maskOps  []*maskexpr.Op
	maskPos  []f32.Vec4

	markers []f32.Vec3
}

func (p *fakePipeline) SubmitQuery(d query.Descriptor) {
	p.descriptors = append(p.descriptors, d)
}

func (p *fakePipeline) DownloadHits() *splatview.Deferred[[]query.HitSample] {
	producer, cell := splatview.NewDeferred[[]query.HitSample]()
	p.hitsProducer = producer
	return cell
}

func (p *fakePipeline) DownloadEdits() *splatview.Deferred[[][]gaussian.EditPod] {
	_, cell := splatview.NewDeferred[[][]gaussian.EditPod]()
	return cell
}

func (p *fakePipeline) DownloadMasks() *splatview.Deferred[[][]uint32] {
	_, cell := splatview.NewDeferred[[][]uint32]()
	return cell
}

func (p *fakePipeline) EvaluateMask(op *maskexpr.Op, _ []splatview.ShapePod, positions []f32.Vec4) ([]uint32, error) {
	p.maskOps = append(p.maskOps, op)
	p.maskPos = positions
	return p.maskBits, p.maskErr
}

func (p *fakePipeline) UpdateHitMarkers(markers []f32.Vec3) {
	p.markers = markers
}

func testVP() query.Viewport {
	return query.Viewport{Min: f32.Vec2{0, 0}, Max: f32.Vec2{800, 600}}
}

func idleTick(s *Session) {
	s.Tick(query.Input{}, testVP())
}

func TestSessionAddModelDedupesNames(t *testing.T) {
	p := &fakePipeline{}
	s := NewSession(p)

	s.Send(AddModel{Name: "scan.ply"})
	s.Send(AddModel{Name: "scan.ply"})
	s.Send(AddModel{Name: "scan.ply"})
	idleTick(s)

	models := s.Models()
	if len(models) != 3 {
		t.Fatalf("len(models) = %d, want 3", len(models))
	}
	want := []string{"scan.ply", "scan.ply (1)", "scan.ply (2)"}
	for i, w := range want {
		if models[i].Name != w {
			t.Errorf("model %d name = %q, want %q", i, models[i].Name, w)
		}
	}
	if got := s.SelectedModel().Name; got != "scan.ply" {
		t.Errorf("selected = %q, want first model", got)
	}
}

func TestSessionRemoveModelFixesSelection(t *testing.T) {
	p := &fakePipeline{}
	s := NewSession(p)
	s.Send(AddModel{Name: "a"})
	s.Send(AddModel{Name: "b"})
	s.Send(AddModel{Name: "c"})
	idleTick(s)

	if !s.SelectModel("c") {
		t.Fatal("SelectModel(c) failed")
	}
	s.Send(RemoveModel{Name: "b"})
	idleTick(s)
	if got := s.SelectedModel().Name; got != "c" {
		t.Errorf("selected after removing earlier model = %q, want \"c\"", got)
	}

	s.Send(RemoveModel{Name: "c"})
	idleTick(s)
	if got := s.SelectedModel().Name; got != "a" {
		t.Errorf("selected after removing selected model = %q, want \"a\"", got)
	}

	s.Send(RemoveModel{Name: "a"})
	idleTick(s)
	if s.SelectedModel() != nil {
		t.Error("SelectedModel() != nil with no models")
	}
}

func TestSessionEvaluateMask(t *testing.T) {
	p := &fakePipeline{maskBits: []uint32{0b101}}
	s := NewSession(p)
	s.Send(AddModel{Name: "a", Points: []gaussian.Point{
		{Pos: f32.Vec3{1, 2, 3}},
		{Pos: f32.Vec3{4, 5, 6}},
	}})
	idleTick(s)

	shapes := []splatview.Shape{splatview.NewShape(), splatview.NewShape()}

	// Parse failure: error persists, no evaluation.
	s.Send(EvaluateMask{Source: "0 &", Shapes: shapes})
	idleTick(s)
	if s.MaskErr() == "" {
		t.Error("expected parse error string")
	}
	if len(p.maskOps) != 0 {
		t.Error("evaluation ran despite parse failure")
	}

	// Index out of range: validation failure.
	s.Send(EvaluateMask{Source: "0 | 7", Shapes: shapes})
	idleTick(s)
	if s.MaskErr() == "" {
		t.Error("expected validation error string")
	}
	if len(p.maskOps) != 0 {
		t.Error("evaluation ran despite validation failure")
	}

	// Success clears the error and applies the bits.
	s.Send(EvaluateMask{Source: "0 & 1", Shapes: shapes})
	idleTick(s)
	if s.MaskErr() != "" {
		t.Errorf("MaskErr() = %q after success", s.MaskErr())
	}
	if got := s.SelectedModel().MaskBits; len(got) != 1 || got[0] != 0b101 {
		t.Errorf("MaskBits = %v, want [0b101]", got)
	}
	if len(p.maskPos) != 2 {
		t.Fatalf("evaluated %d positions, want 2", len(p.maskPos))
	}
	if want := (f32.Vec4{4, 5, 6, 1}); p.maskPos[1] != want {
		t.Errorf("position 1 = %v, want %v", p.maskPos[1], want)
	}

	// Empty source clears the mask.
	s.Send(EvaluateMask{Source: "", Shapes: shapes})
	idleTick(s)
	if s.SelectedModel().MaskBits != nil {
		t.Error("mask not cleared by empty source")
	}
}

func TestSessionEvaluatorFailureKeepsOldMask(t *testing.T) {
	p := &fakePipeline{maskBits: []uint32{1}}
	s := NewSession(p)
	s.Send(AddModel{Name: "a"})
	shapes := []splatview.Shape{splatview.NewShape()}
	s.Send(EvaluateMask{Source: "0", Shapes: shapes})
	idleTick(s)

	p.maskErr = errors.New("device lost")
	s.Send(EvaluateMask{Source: "!0", Shapes: shapes})
	idleTick(s)

	if s.MaskErr() == "" {
		t.Error("expected evaluator error string")
	}
	if got := s.SelectedModel().MaskBits; len(got) != 1 || got[0] != 1 {
		t.Errorf("MaskBits = %v, want previous mask retained", got)
	}
}

func TestSessionLocateHitFlow(t *testing.T) {
	p := &fakePipeline{}
	s := NewSession(p)

	cell := s.BeginLocate(query.MethodClosest)
	if s.Mode() != query.ModeLocate {
		t.Fatalf("mode = %v, want Locate", s.Mode())
	}

	// No click yet: idle descriptor, action stays pending.
	idleTick(s)
	if s.Mode() != query.ModeLocate {
		t.Fatal("pending locate consumed without a click")
	}

	// Click inside the viewport.
	in := query.Input{Pointer: f32.Vec2{100, 100}, PointerValid: true, PrimaryClicked: true}
	s.Tick(in, testVP())
	if s.Mode() != query.ModeNone {
		t.Fatal("locate action not consumed by the click")
	}
	last := p.descriptors[len(p.descriptors)-1]
	if last.Kind != uint32(query.TypeLocateHit) {
		t.Fatalf("descriptor kind = %d, want LocateHit", last.Kind)
	}
	if p.hitsProducer == nil {
		t.Fatal("download not started")
	}

	// Cell unresolved while the readback is in flight.
	if _, ready := cell.Poll(); ready {
		t.Fatal("cell resolved before readback finished")
	}

	p.hitsProducer.Resolve([]query.HitSample{
		{Pos: f32.Vec3{1, 2, 3}, Alpha: 0.9, Depth: 2},
		{Pos: f32.Vec3{4, 5, 6}, Alpha: 0.2, Depth: 1},
	})
	idleTick(s)

	pos, ready := cell.Poll()
	if !ready {
		t.Fatal("cell not resolved after readback")
	}
	if want := (f32.Vec3{4, 5, 6}); pos != want {
		t.Errorf("pos = %v, want %v (closest policy)", pos, want)
	}
}

func TestSessionLocateHitMissResolvesOrigin(t *testing.T) {
	p := &fakePipeline{}
	s := NewSession(p)
	cell := s.BeginLocate(query.MethodMostAlpha)

	in := query.Input{Pointer: f32.Vec2{10, 10}, PointerValid: true, PrimaryClicked: true}
	s.Tick(in, testVP())
	p.hitsProducer.Resolve(nil)
	idleTick(s)

	pos, ready := cell.Poll()
	if !ready {
		t.Fatal("cell not resolved")
	}
	if pos != (f32.Vec3{}) {
		t.Errorf("pos = %v, want origin on miss", pos)
	}
}

func TestSessionLocateHitDownloadFailure(t *testing.T) {
	p := &fakePipeline{}
	s := NewSession(p)
	cell := s.BeginLocate(query.MethodMostAlpha)

	in := query.Input{Pointer: f32.Vec2{10, 10}, PointerValid: true, PrimaryClicked: true}
	s.Tick(in, testVP())
	p.hitsProducer.Reject(errors.New("device lost"))
	idleTick(s)

	if _, ready := cell.Poll(); ready {
		t.Fatal("cell resolved after failed download")
	}
	if cell.Err() == nil {
		t.Error("cell carries no error after failed download")
	}
}

func TestSessionSelectionModeSubmitsDescriptors(t *testing.T) {
	p := &fakePipeline{}
	s := NewSession(p)
	s.StartSelection()

	in := query.Input{Pointer: f32.Vec2{50, 50}, PointerValid: true, PrimaryPressed: true, PrimaryDown: true}
	s.Tick(in, testVP())
	last := p.descriptors[len(p.descriptors)-1]
	if last.Kind != uint32(query.TypeSelection) {
		t.Fatalf("descriptor kind = %d, want Selection", last.Kind)
	}

	s.StopSelection()
	idleTick(s)
	last = p.descriptors[len(p.descriptors)-1]
	if last != (query.Descriptor{}) {
		t.Errorf("descriptor after StopSelection = %+v, want zero", last)
	}
}

func TestSessionUpdateHitMarkers(t *testing.T) {
	p := &fakePipeline{}
	s := NewSession(p)

	markers := []f32.Vec3{{1, 0, 0}, {0, 1, 0}}
	s.Send(UpdateLocateHit{Markers: markers})
	idleTick(s)

	if len(p.markers) != 2 {
		t.Fatalf("pipeline has %d markers, want 2", len(p.markers))
	}
}

func TestSessionCommandOverflowDropped(t *testing.T) {
	p := &fakePipeline{}
	s := NewSession(p)

	// Overfill the channel; the excess must be dropped, not block.
	for i := 0; i < defaultCommandBuffer+10; i++ {
		s.Send(AddModel{Name: "m"})
	}
	idleTick(s)
	if len(s.Models()) != defaultCommandBuffer {
		t.Errorf("len(models) = %d, want %d", len(s.Models()), defaultCommandBuffer)
	}
}
