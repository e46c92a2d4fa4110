package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The viewer RECEIVES the device from the host, it does NOT create one.
// The host window/application layer (e.g. a gogpu.App) implements
// DeviceHandle and hands it to the scene session, so the splat
// pipelines, the mask evaluator, and the download tasks all share one
// device and one submission queue.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// viewer-specific name for the interface while staying fully
// compatible with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// HALProvider is the optional narrowing of DeviceHandle that exposes
// the raw wgpu/hal device and queue. Hosts backed by wgpu implement it;
// the readback and mask-evaluation paths require it.
type HALProvider interface {
	HalDevice() any
	HalQueue() any
}

// NullDeviceHandle is a DeviceHandle with nil implementations. Used in
// tests and for CPU-only sessions where no GPU is available; every
// GPU-dependent path checks for a nil device and falls back to its CPU
// evaluator.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
