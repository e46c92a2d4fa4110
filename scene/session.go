package scene

import (
	"errors"

	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
	"github.com/gogpu/splatview/gaussian"
	"github.com/gogpu/splatview/maskexpr"
	"github.com/gogpu/splatview/query"
)

// errHitDownload reports a failed locate-hit readback to the waiting
// consumer.
var errHitDownload = errors.New("scene: hit download failed")

// defaultCommandBuffer sizes the command channel. Senders log-and-drop
// when it is full; the control goroutine drains it every tick.
const defaultCommandBuffer = 64

// Pipeline is the external GPU query pipeline the session drives. The
// viewer wires an internal/gpu-backed implementation; tests use fakes.
type Pipeline interface {
	// SubmitQuery hands this tick's descriptor to the GPU
	// preprocessing step. Called exactly once per tick.
	SubmitQuery(d query.Descriptor)

	// DownloadHits starts readback of the hit pass output.
	DownloadHits() *splatview.Deferred[[]query.HitSample]

	// DownloadEdits starts readback of the per-model edit buffers.
	DownloadEdits() *splatview.Deferred[[][]gaussian.EditPod]

	// DownloadMasks starts readback of the per-model mask bit buffers.
	DownloadMasks() *splatview.Deferred[[][]uint32]

	// EvaluateMask runs the compiled expression over the given point
	// positions, one vec4 per point with w unused.
	EvaluateMask(op *maskexpr.Op, shapes []splatview.ShapePod, positions []f32.Vec4) ([]uint32, error)

	// UpdateHitMarkers replaces the marker overlay.
	UpdateHitMarkers(markers []f32.Vec3)
}

// Option configures a Session.
type Option func(*Session)

// WithAlphaThreshold overrides the most-alpha hit window.
func WithAlphaThreshold(threshold float32) Option {
	return func(s *Session) { s.alphaThreshold = threshold }
}

// WithQueryOptions forwards options to the query builder.
func WithQueryOptions(opts ...query.Option) Option {
	return func(s *Session) { s.queryOpts = opts }
}

// Session is the per-scene control loop state. All methods except Send
// must be called from the control goroutine; Tick runs once per frame.
type Session struct {
	pipeline Pipeline
	commands chan Command

	builder *query.Builder
	tracker *query.ResultTracker

	// pending delivers the in-flight locate hit; nil when none.
	pending *splatview.DeferredProducer[f32.Vec3]

	mode   query.Mode
	locate *query.LocateRequest

	models   []*Model
	selected int

	maskErr string

	alphaThreshold float32
	queryOpts      []query.Option
}

// NewSession returns a session driving the given pipeline.
func NewSession(pipeline Pipeline, opts ...Option) *Session {
	s := &Session{
		pipeline:       pipeline,
		commands:       make(chan Command, defaultCommandBuffer),
		tracker:        query.NewResultTracker(),
		alphaThreshold: query.DefaultAlphaThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = query.NewBuilder(s.queryOpts...)
	return s
}

// Send queues a command for the next tick. Safe from any goroutine. A
// full channel drops the command with a log line.
func (s *Session) Send(cmd Command) {
	select {
	case s.commands <- cmd:
	default:
		splatview.Logger().Warn("scene command dropped, channel full", "command", commandName(cmd))
	}
}

// Tick runs one frame of the control loop: drain commands, rebuild the
// query, hand the descriptor to the pipeline, and follow any in-flight
// hit readback.
func (s *Session) Tick(in query.Input, vp query.Viewport) {
	s.drainCommands()

	q := s.builder.Tick(in, vp, s.mode, s.locate)
	s.pipeline.SubmitQuery(q.Descriptor())

	if q.Type == query.TypeLocateHit {
		// The pending locate action is consumed by this click whether
		// or not the tracker accepted it.
		if s.tracker.Begin(q.Method) {
			s.tracker.StartDownload(s.pipeline.DownloadHits())
			s.pending = q.Result
		}
		s.mode = query.ModeNone
		s.locate = nil
	}

	s.pollHit()
}

func (s *Session) pollHit() {
	if s.tracker.State() != query.ResultDownloading {
		return
	}
	method := s.tracker.Method()
	samples, ok := s.tracker.Poll()
	if ok {
		// A miss resolves to the origin so the consumer always gets a
		// defined position.
		pos, _ := query.ResolveHit(method, samples, s.alphaThreshold)
		if s.pending != nil {
			s.pending.Resolve(pos)
			s.pending = nil
		}
		return
	}
	if s.tracker.State() == query.ResultIdle && s.pending != nil {
		s.pending.Reject(errHitDownload)
		s.pending = nil
	}
}

func (s *Session) drainCommands() {
	for {
		select {
		case cmd := <-s.commands:
			s.handle(cmd)
		default:
			return
		}
	}
}

func (s *Session) handle(cmd Command) {
	switch c := cmd.(type) {
	case AddModel:
		s.addModel(c)
	case RemoveModel:
		s.removeModel(c.Name)
	case EvaluateMask:
		s.evaluateMask(c)
	case UpdateLocateHit:
		s.pipeline.UpdateHitMarkers(c.Markers)
	default:
		splatview.Logger().Warn("unknown scene command", "command", commandName(cmd))
	}
}

func (s *Session) addModel(c AddModel) {
	name := uniqueName(s.models, c.Name)
	s.models = append(s.models, &Model{
		Name:    name,
		Points:  c.Points,
		Layout:  c.Layout,
		Visible: true,
	})
	splatview.Logger().Debug("model added", "name", name, "points", len(c.Points))
}

func (s *Session) removeModel(name string) {
	for i, m := range s.models {
		if m.Name != name {
			continue
		}
		s.models = append(s.models[:i], s.models[i+1:]...)
		splatview.Logger().Debug("model removed", "name", name)
		if s.selected >= len(s.models) {
			s.selected = 0
		} else if s.selected > i {
			s.selected--
		}
		return
	}
	splatview.Logger().Warn("remove of unknown model", "name", name)
}

// evaluateMask runs the parse, validate, compile, evaluate chain. The
// mask is applied only when parse and validation both succeed; the
// error string persists until the next evaluation.
func (s *Session) evaluateMask(c EvaluateMask) {
	op, err := maskexpr.Parse(c.Source)
	if err != nil {
		s.maskErr = err.Error()
		return
	}
	if err := op.ValidateShapes(len(c.Shapes)); err != nil {
		s.maskErr = err.Error()
		return
	}
	s.maskErr = ""

	m := s.SelectedModel()
	if m == nil {
		return
	}
	if op == nil {
		m.MaskBits = nil
		return
	}
	positions := make([]f32.Vec4, len(m.Points))
	for i, pt := range m.Points {
		positions[i] = f32.Vec4{pt.Pos[0], pt.Pos[1], pt.Pos[2], 1}
	}
	bits, err := s.pipeline.EvaluateMask(op, splatview.Pods(c.Shapes), positions)
	if err != nil {
		s.maskErr = err.Error()
		return
	}
	m.MaskBits = bits
}

// BeginLocate arms a locate-hit action with the given policy and
// returns the cell the position resolves into. A later BeginLocate
// before a valid click replaces the pending action.
func (s *Session) BeginLocate(method query.HitMethod) *splatview.Deferred[f32.Vec3] {
	producer, cell := splatview.NewDeferred[f32.Vec3]()
	s.mode = query.ModeLocate
	s.locate = &query.LocateRequest{Method: method, Result: producer}
	return cell
}

// StartSelection switches the session into selection mode.
func (s *Session) StartSelection() {
	s.mode = query.ModeSelect
}

// StopSelection leaves selection mode; subsequent ticks emit idle
// queries.
func (s *Session) StopSelection() {
	if s.mode == query.ModeSelect {
		s.mode = query.ModeNone
	}
}

// Selection exposes the persistent selection parameters.
func (s *Session) Selection() *query.Selection {
	return s.builder.Selection()
}

// Mode returns the current pending action mode.
func (s *Session) Mode() query.Mode { return s.mode }

// MaskErr returns the persistent mask error string; empty when the last
// evaluation succeeded.
func (s *Session) MaskErr() string { return s.maskErr }

// Models returns the ordered model list.
func (s *Session) Models() []*Model { return s.models }

// SelectedModel returns the selected model, or nil with no models.
func (s *Session) SelectedModel() *Model {
	if len(s.models) == 0 {
		return nil
	}
	return s.models[s.selected]
}

// SelectModel moves the selection. Returns false for an unknown name.
func (s *Session) SelectModel(name string) bool {
	for i, m := range s.models {
		if m.Name == name {
			s.selected = i
			return true
		}
	}
	return false
}

// DownloadEdits forwards to the pipeline, letting the session serve as
// the export coordinator's buffer source.
func (s *Session) DownloadEdits() *splatview.Deferred[[][]gaussian.EditPod] {
	return s.pipeline.DownloadEdits()
}

// DownloadMasks forwards to the pipeline.
func (s *Session) DownloadMasks() *splatview.Deferred[[][]uint32] {
	return s.pipeline.DownloadMasks()
}

func commandName(cmd Command) string {
	switch cmd.(type) {
	case AddModel:
		return "AddModel"
	case RemoveModel:
		return "RemoveModel"
	case EvaluateMask:
		return "EvaluateMask"
	case UpdateLocateHit:
		return "UpdateLocateHit"
	default:
		return "Unknown"
	}
}
