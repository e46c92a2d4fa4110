package gpu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	splatview "github.com/gogpu/splatview"
	"github.com/gogpu/splatview/gaussian"
)

// Downloader errors.
var (
	// ErrNilDevice is returned when constructing with a nil device.
	ErrNilDevice = errors.New("gpu: device is nil")

	// ErrNilQueue is returned when constructing with a nil queue.
	ErrNilQueue = errors.New("gpu: queue is nil")

	// ErrNilBuffer is returned when downloading from a nil buffer.
	ErrNilBuffer = errors.New("gpu: source buffer is nil")

	// ErrEmptyDownload is returned for a zero-size download.
	ErrEmptyDownload = errors.New("gpu: download size is zero")
)

// downloadTimeout bounds the fence wait of one readback cycle.
const downloadTimeout = 5 * time.Second

// Downloader copies GPU buffers back to the CPU without blocking the
// control thread. The device and queue are shared with the render
// pipelines; hal synchronizes submissions internally, and the session
// keeps at most one readback cycle in flight per operation.
type Downloader struct {
	device hal.Device
	queue  hal.Queue
}

// NewDownloader returns a Downloader over the shared device and queue.
func NewDownloader(device hal.Device, queue hal.Queue) (*Downloader, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	return &Downloader{device: device, queue: queue}, nil
}

// Download starts an asynchronous readback of size bytes from src and
// returns the cell the bytes resolve into. The copy, submit, and
// bounded fence wait all run on a background goroutine; the caller
// polls the cell from its tick loop.
func (d *Downloader) Download(src hal.Buffer, size uint64) *splatview.Deferred[[]byte] {
	producer, cell := splatview.NewDeferred[[]byte]()
	if src == nil {
		producer.Reject(ErrNilBuffer)
		return cell
	}
	if size == 0 {
		producer.Reject(ErrEmptyDownload)
		return cell
	}

	go func() {
		data, err := d.readback(src, size)
		if err != nil {
			splatview.Logger().Warn("buffer download failed", "size", size, "error", err)
			producer.Reject(err)
			return
		}
		producer.Resolve(data)
	}()
	return cell
}

// DownloadNow copies size bytes from src synchronously. Callers already
// running on a background goroutine use it to chain dependent readbacks,
// such as a counter buffer followed by the results it sizes.
func (d *Downloader) DownloadNow(src hal.Buffer, size uint64) ([]byte, error) {
	if src == nil {
		return nil, ErrNilBuffer
	}
	if size == 0 {
		return nil, ErrEmptyDownload
	}
	return d.readback(src, size)
}

// readback performs one copy-submit-wait-read cycle.
func (d *Downloader) readback(src hal.Buffer, size uint64) ([]byte, error) {
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "download_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "download_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("download"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(src, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)
	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, downloadTimeout)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	data := make([]byte, size)
	if err := d.queue.ReadBuffer(staging, 0, data); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return data, nil
}

// DecodeEditPods decodes a downloaded edit buffer into count pods.
func DecodeEditPods(data []byte, count int) ([]gaussian.EditPod, error) {
	pods := make([]gaussian.EditPod, count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, pods); err != nil {
		return nil, fmt.Errorf("gpu: decode edit pods: %w", err)
	}
	return pods, nil
}

// DecodeMaskWords decodes a downloaded mask bit buffer into packed u32
// words, one bit per point, LSB first.
func DecodeMaskWords(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("gpu: mask buffer length %d is not word aligned", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}
