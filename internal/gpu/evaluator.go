package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"

	splatview "github.com/gogpu/splatview"
	"github.com/gogpu/splatview/maskexpr"
)

// evaluateTimeout bounds the fence wait of one evaluation dispatch.
const evaluateTimeout = 5 * time.Second

// maskWorkgroupSize matches @workgroup_size in the kernel template.
const maskWorkgroupSize = 64

// MaskEvaluator evaluates one compiled mask expression over the point
// positions on the GPU, producing packed mask bits (one u32 per 32
// points, LSB first). The expression is baked into the kernel, so a
// changed expression needs a new evaluator.
type MaskEvaluator struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// NewMaskEvaluator compiles the kernel for op via naga and builds the
// compute pipeline on the shared device.
func NewMaskEvaluator(device hal.Device, queue hal.Queue, op *maskexpr.Op) (*MaskEvaluator, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}

	source := KernelSource(op)
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile mask kernel: %w", err)
	}
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}

	e := &MaskEvaluator{device: device, queue: queue}
	e.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "mask_eval",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create mask shader module: %w", err)
	}

	e.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "mask_eval_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		e.Destroy()
		return nil, fmt.Errorf("gpu: create mask bind group layout: %w", err)
	}

	e.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "mask_eval_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{e.bindLayout},
	})
	if err != nil {
		e.Destroy()
		return nil, fmt.Errorf("gpu: create mask pipeline layout: %w", err)
	}

	e.pipeline, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "mask_eval_pipeline", Layout: e.pipeLayout,
		Compute: hal.ComputeState{Module: e.shader, EntryPoint: "main"},
	})
	if err != nil {
		e.Destroy()
		return nil, fmt.Errorf("gpu: create mask compute pipeline: %w", err)
	}

	return e, nil
}

// Destroy releases the pipeline objects. Safe on a partially built
// evaluator.
func (e *MaskEvaluator) Destroy() {
	if e.device == nil {
		return
	}
	if e.pipeline != nil {
		e.device.DestroyComputePipeline(e.pipeline)
		e.pipeline = nil
	}
	if e.pipeLayout != nil {
		e.device.DestroyPipelineLayout(e.pipeLayout)
		e.pipeLayout = nil
	}
	if e.bindLayout != nil {
		e.device.DestroyBindGroupLayout(e.bindLayout)
		e.bindLayout = nil
	}
	if e.shader != nil {
		e.device.DestroyShaderModule(e.shader)
		e.shader = nil
	}
}

// Evaluate runs the kernel over positions with the given shape pods and
// reads the packed mask bits back. positions carry one vec4 per point
// (xyz position, w unused) to match the kernel's array stride.
func (e *MaskEvaluator) Evaluate(shapes []splatview.ShapePod, positions []f32.Vec4) ([]uint32, error) {
	n := len(positions)
	if n == 0 {
		return nil, nil
	}
	words := (n + 31) / 32
	maskSize := uint64(words * 4)

	shapesBytes, err := podBytes(shapes)
	if err != nil {
		return nil, err
	}
	posBytes, err := podBytes(positions)
	if err != nil {
		return nil, err
	}
	paramsBytes, err := podBytes([]uint32{uint32(n), 0, 0, 0})
	if err != nil {
		return nil, err
	}

	paramsBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mask_eval_params", Size: uint64(len(paramsBytes)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create params buffer: %w", err)
	}
	defer e.device.DestroyBuffer(paramsBuf)

	shapesBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mask_eval_shapes", Size: uint64(len(shapesBytes)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shapes buffer: %w", err)
	}
	defer e.device.DestroyBuffer(shapesBuf)

	posBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mask_eval_positions", Size: uint64(len(posBytes)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create positions buffer: %w", err)
	}
	defer e.device.DestroyBuffer(posBuf)

	maskBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mask_eval_bits", Size: maskSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create mask buffer: %w", err)
	}
	defer e.device.DestroyBuffer(maskBuf)

	stagingBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mask_eval_staging", Size: maskSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer e.device.DestroyBuffer(stagingBuf)

	e.queue.WriteBuffer(paramsBuf, 0, paramsBytes)
	e.queue.WriteBuffer(shapesBuf, 0, shapesBytes)
	e.queue.WriteBuffer(posBuf, 0, posBytes)
	e.queue.WriteBuffer(maskBuf, 0, make([]byte, maskSize))

	bindGroup, err := e.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "mask_eval_bind", Layout: e.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: uint64(len(paramsBytes))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: shapesBuf.NativeHandle(), Offset: 0, Size: uint64(len(shapesBytes))}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: posBuf.NativeHandle(), Offset: 0, Size: uint64(len(posBytes))}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: maskBuf.NativeHandle(), Offset: 0, Size: maskSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create bind group: %w", err)
	}
	defer e.device.DestroyBindGroup(bindGroup)

	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "mask_eval_encoder"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("mask_eval"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "mask_eval_pass"})
	pass.SetPipeline(e.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(uint32((n+maskWorkgroupSize-1)/maskWorkgroupSize), 1, 1)
	pass.End()

	encoder.CopyBufferToBuffer(maskBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: maskSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)

	fence, err := e.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("gpu: create fence: %w", err)
	}
	defer e.device.DestroyFence(fence)
	if err := e.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("gpu: submit: %w", err)
	}
	fenceOK, err := e.device.Wait(fence, 1, evaluateTimeout)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("gpu: wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, maskSize)
	if err := e.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("gpu: readback: %w", err)
	}
	return DecodeMaskWords(readback)
}

// podBytes serializes a fixed-layout slice little-endian.
func podBytes(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("gpu: serialize pod data: %w", err)
	}
	return buf.Bytes(), nil
}
