// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
	"github.com/gogpu/wgpu/types"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (windowing layer, gogpu.App, or a test harness) owns the
// GPU device and passes it in; tilefield never creates one. This keeps
// GPU resources shared between the tile renderer and whatever else the
// host draws.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, keeping full
// compatibility with the gpucontext ecosystem under a local name.
type DeviceHandle = gpucontext.DeviceProvider

// SurfaceConfig describes the presentation surface the renderer draws
// to. The host supplies it alongside the device.
type SurfaceConfig struct {
	// Width and Height are the surface size in pixels.
	Width, Height int

	// Format is the surface texture format.
	Format gputypes.TextureFormat
}

// GPUInfo describes the selected GPU adapter.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType types.DeviceType
	// Backend is the graphics API in use (Vulkan, Metal, DX12).
	Backend types.Backend
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// ProbeGPU retrieves information about a GPU adapter, for logging at
// startup.
func ProbeGPU(adapterID core.AdapterID) (*GPUInfo, error) {
	info, err := core.GetAdapterInfo(adapterID)
	if err != nil {
		return nil, fmt.Errorf("render: failed to get adapter info: %w", err)
	}
	return &GPUInfo{
		Name:       info.Name,
		Vendor:     info.Vendor,
		DeviceType: info.DeviceType,
		Backend:    info.Backend,
		Driver:     info.Driver,
	}, nil
}
