// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/types"

	"github.com/gogpu/tilefield"
)

//go:embed shaders/tile.wgsl
var tileShaderWGSL string

// GPURenderer implements the Renderer contract.
var _ Renderer = (*GPURenderer)(nil)

// quadVertices is the unit quad expanded per instance, as two
// triangles. Corners are offsets from the instance center in units of
// the instance side.
var quadVertices = [12]float32{
	-0.5, -0.5, 0.5, -0.5, 0.5, 0.5,
	-0.5, -0.5, 0.5, 0.5, -0.5, 0.5,
}

// GPUOption configures a GPURenderer during creation.
type GPUOption func(*GPURenderer)

// WithBatchSize overrides the instances-per-draw batch size. The value
// is clamped to [MinBatchSize, MaxBatchSize].
func WithBatchSize(n int) GPUOption {
	return func(r *GPURenderer) { r.batchSize = ClampBatchSize(n) }
}

// WithResizeHandler registers the callback invoked when the host
// reports a surface resize, after the renderer adopts the new size.
// The camera's SetAspect is the typical target.
func WithResizeHandler(fn func(width, height int)) GPUOption {
	return func(r *GPURenderer) { r.onResize = fn }
}

// WithDeviceLostHandler registers the callback invoked when the host
// reports catastrophic back-end loss. The engine's Pause is the
// typical target.
func WithDeviceLostHandler(fn func(err error)) GPUOption {
	return func(r *GPURenderer) { r.onDeviceLost = fn }
}

// GPURenderer holds the GPU resources for an instanced unit-quad tile
// draw over gogpu/wgpu: at construction it compiles the WGSL shader to
// SPIR-V with naga and creates the shader module, layouts, and quad and
// uniform buffers. It creates no render pipeline and records no draw
// commands; Submit uploads instance data only.
//
// GPURenderer is safe for concurrent use, though the engine drives it
// from a single frame loop.
type GPURenderer struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	shaderModule hal.ShaderModule
	spirvCode    []uint32

	uniformLayout  hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout

	vertexBuf   hal.Buffer
	uniformBuf  hal.Buffer
	instanceBuf hal.Buffer
	instanceCap int

	batchSize     int
	width, height int

	onResize     func(width, height int)
	onDeviceLost func(err error)

	lost   bool
	closed bool
}

// NewGPURenderer creates the instanced tile renderer on the host's
// device and queue.
func NewGPURenderer(device hal.Device, queue hal.Queue, surface SurfaceConfig, opts ...GPUOption) (*GPURenderer, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("render: device and queue are required")
	}
	if surface.Width <= 0 || surface.Height <= 0 {
		return nil, fmt.Errorf("render: invalid surface size: %dx%d", surface.Width, surface.Height)
	}

	r := &GPURenderer{
		device:    device,
		queue:     queue,
		batchSize: DefaultBatchSize,
		width:     surface.Width,
		height:    surface.Height,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.init(); err != nil {
		r.destroyLocked()
		return nil, err
	}
	return r, nil
}

// init compiles the shader and creates static GPU resources.
func (r *GPURenderer) init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spirvBytes, err := naga.Compile(tileShaderWGSL)
	if err != nil {
		return fmt.Errorf("render: failed to compile tile shader: %w", err)
	}
	r.spirvCode = make([]uint32, len(spirvBytes)/4)
	for i := range r.spirvCode {
		r.spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	shaderModule, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "tile_shader",
		Source: hal.ShaderSource{
			SPIRV: r.spirvCode,
		},
	})
	if err != nil {
		return fmt.Errorf("render: failed to create shader module: %w", err)
	}
	r.shaderModule = shaderModule

	uniformLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "tile_uniform_layout",
		Entries: []types.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: types.ShaderStageVertex,
				Buffer: &types.BufferBindingLayout{
					Type:           types.BufferBindingTypeUniform,
					MinBindingSize: 64, // mat4x4<f32>
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("render: failed to create bind group layout: %w", err)
	}
	r.uniformLayout = uniformLayout

	pipelineLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "tile_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("render: failed to create pipeline layout: %w", err)
	}
	r.pipelineLayout = pipelineLayout

	vertexBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "tile_quad_vertices",
		Size:  uint64(len(quadVertices) * 4),
		Usage: types.BufferUsageVertex | types.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("render: failed to create vertex buffer: %w", err)
	}
	r.vertexBuf = vertexBuf
	r.queue.WriteBuffer(r.vertexBuf, 0, packFloats(quadVertices[:]))

	uniformBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "tile_uniforms",
		Size:  64,
		Usage: types.BufferUsageUniform | types.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("render: failed to create uniform buffer: %w", err)
	}
	r.uniformBuf = uniformBuf

	tilefield.Logger().Info("render: GPU tile pipeline ready",
		"spirv_words", len(r.spirvCode), "batch_size", r.batchSize)
	return nil
}

// SetMatrix uploads the view-projection matrix.
func (r *GPURenderer) SetMatrix(m [16]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.lost || r.uniformBuf == nil {
		return
	}
	r.queue.WriteBuffer(r.uniformBuf, 0, packFloats(m[:]))
}

// Submit uploads the frame's instances into the instance buffer in
// batches of at most the batch size. No draw command is recorded.
func (r *GPURenderer) Submit(instances []Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}
	if r.lost {
		return ErrDeviceLost
	}

	for lo := 0; lo < len(instances); lo += r.batchSize {
		hi := min(lo+r.batchSize, len(instances))
		if err := r.drawBatchLocked(instances[lo:hi]); err != nil {
			return err
		}
	}

	tilefield.Logger().Debug("render: frame submitted",
		"instances", len(instances),
		"batches", (len(instances)+r.batchSize-1)/r.batchSize)
	return nil
}

// drawBatchLocked uploads one batch into the instance buffer. It issues
// no draw.
func (r *GPURenderer) drawBatchLocked(batch []Instance) error {
	if err := r.ensureInstanceCapacityLocked(len(batch)); err != nil {
		return err
	}
	r.queue.WriteBuffer(r.instanceBuf, 0, packInstances(batch))

	// The quad vertex buffer (slot 0) and the instance buffer (slot 1)
	// hold the data an instanced draw of 6 vertices per instance reads.
	// No render pipeline exists and no draw is recorded here.
	return nil
}

// ensureInstanceCapacityLocked grows the instance buffer to hold at
// least n instances. Grown geometrically so steady-state frames do no
// buffer churn.
func (r *GPURenderer) ensureInstanceCapacityLocked(n int) error {
	if n <= r.instanceCap && r.instanceBuf != nil {
		return nil
	}
	capacity := max(n, r.instanceCap*2, r.batchSize)
	if r.instanceBuf != nil {
		r.device.DestroyBuffer(r.instanceBuf)
		r.instanceBuf = nil
	}
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "tile_instances",
		Size:  uint64(capacity * InstanceStride),
		Usage: types.BufferUsageVertex | types.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("render: failed to grow instance buffer: %w", err)
	}
	r.instanceBuf = buf
	r.instanceCap = capacity
	return nil
}

// Resize adopts a new surface size and signals the registered resize
// handler.
func (r *GPURenderer) Resize(width, height int) {
	r.mu.Lock()
	if width > 0 && height > 0 {
		r.width, r.height = width, height
	}
	fn := r.onResize
	r.mu.Unlock()
	if fn != nil {
		fn(width, height)
	}
}

// NotifyDeviceLost records back-end loss reported by the host. Submit
// returns ErrDeviceLost until Restore is called.
func (r *GPURenderer) NotifyDeviceLost(err error) {
	r.mu.Lock()
	r.lost = true
	fn := r.onDeviceLost
	r.mu.Unlock()

	tilefield.Logger().Warn("render: device lost", "err", err)
	if fn != nil {
		fn(err)
	}
}

// Restore clears the lost flag after the host recovered the back-end.
func (r *GPURenderer) Restore() {
	r.mu.Lock()
	r.lost = false
	r.mu.Unlock()
	tilefield.Logger().Info("render: device restored")
}

// Lost reports whether the back-end is currently lost.
func (r *GPURenderer) Lost() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lost
}

// Close releases all GPU resources.
func (r *GPURenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.destroyLocked()
	return nil
}

func (r *GPURenderer) destroyLocked() {
	if r.instanceBuf != nil {
		r.device.DestroyBuffer(r.instanceBuf)
		r.instanceBuf = nil
	}
	if r.uniformBuf != nil {
		r.device.DestroyBuffer(r.uniformBuf)
		r.uniformBuf = nil
	}
	if r.vertexBuf != nil {
		r.device.DestroyBuffer(r.vertexBuf)
		r.vertexBuf = nil
	}
	if r.shaderModule != nil {
		r.device.DestroyShaderModule(r.shaderModule)
		r.shaderModule = nil
	}
}

// packFloats serializes float32 values little-endian.
func packFloats(vals []float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// packInstances serializes instances at InstanceStride, padding after
// Side to match WGSL struct alignment.
func packInstances(instances []Instance) []byte {
	buf := make([]byte, len(instances)*InstanceStride)
	for i, in := range instances {
		o := i * InstanceStride
		binary.LittleEndian.PutUint32(buf[o+0:], math.Float32bits(in.X))
		binary.LittleEndian.PutUint32(buf[o+4:], math.Float32bits(in.Y))
		binary.LittleEndian.PutUint32(buf[o+8:], math.Float32bits(in.Side))
		// 4 bytes pad
		binary.LittleEndian.PutUint32(buf[o+16:], math.Float32bits(in.R))
		binary.LittleEndian.PutUint32(buf[o+20:], math.Float32bits(in.G))
		binary.LittleEndian.PutUint32(buf[o+24:], math.Float32bits(in.B))
		binary.LittleEndian.PutUint32(buf[o+28:], math.Float32bits(in.A))
	}
	return buf
}
