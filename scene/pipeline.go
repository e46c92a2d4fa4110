package scene

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
	"github.com/gogpu/splatview/gaussian"
	"github.com/gogpu/splatview/internal/gpu"
	"github.com/gogpu/splatview/maskexpr"
	"github.com/gogpu/splatview/query"
	"github.com/gogpu/splatview/render"
)

// GPUPipeline errors.
var (
	// ErrNoHALDevice is returned when the device handle does not expose
	// a raw wgpu/hal device. CPU-only hosts hit this; they cannot run
	// the query pipeline.
	ErrNoHALDevice = errors.New("scene: device handle exposes no hal device")

	// ErrNoHitBuffers is returned when a hit download starts before the
	// render layer attached the hit pass output buffers.
	ErrNoHitBuffers = errors.New("scene: hit buffers not attached")
)

// queryUniformSize is the byte size of the query descriptor uniform,
// padded from the 24-byte descriptor to a 16-byte-aligned stride.
const queryUniformSize = 32

// defaultMaxHits caps how many samples one hit download reads back,
// regardless of the counter value the GPU wrote.
const defaultMaxHits = 1024

// ModelBuffers are the per-model GPU buffers the render layer owns and
// the pipeline reads back from: the edit pods and the packed mask bits.
type ModelBuffers struct {
	Edits     hal.Buffer
	EditCount int

	Mask      hal.Buffer
	MaskWords int
}

// GPUPipeline is the wgpu-backed Pipeline. It shares the host's device
// and queue with the render pipelines: queries are uploaded to a small
// uniform buffer the splat shaders bind, and readbacks copy out of
// buffers the render layer attaches.
//
// The session drives SubmitQuery, the Download methods, and
// EvaluateMask from the control goroutine; the render layer calls the
// Attach methods and HitMarkers from the frame callback. The mutex
// covers only the attached-buffer and marker snapshots.
type GPUPipeline struct {
	device     hal.Device
	queue      hal.Queue
	downloader *gpu.Downloader

	queryBuf hal.Buffer
	maxHits  int

	mu        sync.Mutex
	hitCount  hal.Buffer
	hitOut    hal.Buffer
	modelBufs []ModelBuffers
	markers   []f32.Vec3
}

// GPUPipelineOption configures a GPUPipeline.
type GPUPipelineOption func(*GPUPipeline)

// WithMaxHits overrides the hit download cap.
func WithMaxHits(n int) GPUPipelineOption {
	return func(p *GPUPipeline) { p.maxHits = n }
}

// NewGPUPipeline builds the pipeline over the host's device handle. The
// handle must implement render.HALProvider with non-nil hal handles;
// render.NullDeviceHandle and other CPU-only handles are rejected.
func NewGPUPipeline(handle render.DeviceHandle, opts ...GPUPipelineOption) (*GPUPipeline, error) {
	hp, ok := handle.(render.HALProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, ErrNoHALDevice
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, ErrNoHALDevice
	}

	downloader, err := gpu.NewDownloader(device, queue)
	if err != nil {
		return nil, err
	}

	queryBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "query_descriptor", Size: queryUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("scene: create query buffer: %w", err)
	}

	p := &GPUPipeline{
		device:     device,
		queue:      queue,
		downloader: downloader,
		queryBuf:   queryBuf,
		maxHits:    defaultMaxHits,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Destroy releases the pipeline's own buffers. Attached buffers belong
// to the render layer and are left alone.
func (p *GPUPipeline) Destroy() {
	if p.queryBuf != nil {
		p.device.DestroyBuffer(p.queryBuf)
		p.queryBuf = nil
	}
}

// AttachHitBuffers registers the hit pass output: the sample counter (a
// single u32) and the results buffer. Called by the render layer after
// it builds the hit pass.
func (p *GPUPipeline) AttachHitBuffers(count, samples hal.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hitCount = count
	p.hitOut = samples
}

// SetModelBuffers replaces the per-model buffer list, in model order.
// Called by the render layer whenever models are added or removed.
func (p *GPUPipeline) SetModelBuffers(bufs []ModelBuffers) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modelBufs = append(p.modelBufs[:0], bufs...)
}

// SubmitQuery uploads this tick's descriptor to the query uniform.
func (p *GPUPipeline) SubmitQuery(d query.Descriptor) {
	data, err := descriptorBytes(d)
	if err != nil {
		splatview.Logger().Warn("query descriptor upload failed", "error", err)
		return
	}
	p.queue.WriteBuffer(p.queryBuf, 0, data)
}

// DownloadHits reads the hit counter, then the samples it sizes. Both
// readbacks run on one background goroutine so the chained fence waits
// never block the control thread.
func (p *GPUPipeline) DownloadHits() *splatview.Deferred[[]query.HitSample] {
	producer, cell := splatview.NewDeferred[[]query.HitSample]()

	p.mu.Lock()
	count, out := p.hitCount, p.hitOut
	p.mu.Unlock()
	if count == nil || out == nil {
		producer.Reject(ErrNoHitBuffers)
		return cell
	}

	go func() {
		countData, err := p.downloader.DownloadNow(count, 4)
		if err != nil {
			splatview.Logger().Warn("hit count download failed", "error", err)
			producer.Reject(err)
			return
		}
		n, err := gpu.DecodeHitCount(countData)
		if err != nil {
			producer.Reject(err)
			return
		}
		if n > p.maxHits {
			n = p.maxHits
		}
		if n == 0 {
			producer.Resolve(nil)
			return
		}
		data, err := p.downloader.DownloadNow(out, uint64(n)*gpu.HitSampleSize)
		if err != nil {
			splatview.Logger().Warn("hit samples download failed", "count", n, "error", err)
			producer.Reject(err)
			return
		}
		samples, err := gpu.DecodeHitSamples(data, n)
		if err != nil {
			producer.Reject(err)
			return
		}
		producer.Resolve(samples)
	}()
	return cell
}

// DownloadEdits reads every attached model's edit buffer back.
func (p *GPUPipeline) DownloadEdits() *splatview.Deferred[[][]gaussian.EditPod] {
	producer, cell := splatview.NewDeferred[[][]gaussian.EditPod]()
	bufs := p.snapshotModelBuffers()

	go func() {
		edits := make([][]gaussian.EditPod, len(bufs))
		for i, b := range bufs {
			if b.Edits == nil || b.EditCount == 0 {
				continue
			}
			data, err := p.downloader.DownloadNow(b.Edits, uint64(b.EditCount)*gaussian.EditPodSize)
			if err != nil {
				splatview.Logger().Warn("edit download failed", "model", i, "error", err)
				producer.Reject(err)
				return
			}
			pods, err := gpu.DecodeEditPods(data, b.EditCount)
			if err != nil {
				producer.Reject(err)
				return
			}
			edits[i] = pods
		}
		producer.Resolve(edits)
	}()
	return cell
}

// DownloadMasks reads every attached model's mask bit buffer back.
func (p *GPUPipeline) DownloadMasks() *splatview.Deferred[[][]uint32] {
	producer, cell := splatview.NewDeferred[[][]uint32]()
	bufs := p.snapshotModelBuffers()

	go func() {
		masks := make([][]uint32, len(bufs))
		for i, b := range bufs {
			if b.Mask == nil || b.MaskWords == 0 {
				continue
			}
			data, err := p.downloader.DownloadNow(b.Mask, uint64(b.MaskWords)*4)
			if err != nil {
				splatview.Logger().Warn("mask download failed", "model", i, "error", err)
				producer.Reject(err)
				return
			}
			words, err := gpu.DecodeMaskWords(data)
			if err != nil {
				producer.Reject(err)
				return
			}
			masks[i] = words
		}
		producer.Resolve(masks)
	}()
	return cell
}

// EvaluateMask compiles the expression into a kernel, runs it over the
// positions, and returns the packed mask bits. The evaluator is built
// per call since the expression is baked into the kernel.
func (p *GPUPipeline) EvaluateMask(op *maskexpr.Op, shapes []splatview.ShapePod, positions []f32.Vec4) ([]uint32, error) {
	ev, err := gpu.NewMaskEvaluator(p.device, p.queue, op)
	if err != nil {
		return nil, err
	}
	defer ev.Destroy()
	return ev.Evaluate(shapes, positions)
}

// UpdateHitMarkers replaces the marker overlay snapshot.
func (p *GPUPipeline) UpdateHitMarkers(markers []f32.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markers = append(p.markers[:0], markers...)
}

// HitMarkers returns the current marker overlay for the render layer.
func (p *GPUPipeline) HitMarkers() []f32.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]f32.Vec3, len(p.markers))
	copy(out, p.markers)
	return out
}

func (p *GPUPipeline) snapshotModelBuffers() []ModelBuffers {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ModelBuffers, len(p.modelBufs))
	copy(out, p.modelBufs)
	return out
}

// descriptorBytes serializes the descriptor little-endian, padded to
// the uniform stride.
func descriptorBytes(d query.Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, d); err != nil {
		return nil, fmt.Errorf("scene: serialize query descriptor: %w", err)
	}
	data := buf.Bytes()
	if len(data) < queryUniformSize {
		data = append(data, make([]byte, queryUniformSize-len(data))...)
	}
	return data, nil
}

var _ Pipeline = (*GPUPipeline)(nil)
