// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the renderer contract the tile field core
// submits to, a GPU implementation over gogpu/wgpu that prepares the
// instanced-draw resources and uploads instance data (it records no
// draw commands), and a software reference implementation used by tests
// and headless tools.
package render

import (
	"errors"

	"github.com/gogpu/tilefield"
)

// Renderer-facing errors.
var (
	// ErrRendererClosed is returned when submitting to a closed renderer.
	ErrRendererClosed = errors.New("render: renderer closed")

	// ErrDeviceLost is returned while the GPU back-end is lost. The
	// engine pauses selection until the host signals recovery.
	ErrDeviceLost = errors.New("render: device lost")
)

// Batch size bounds for instanced submission.
const (
	// MinBatchSize is the smallest useful instanced batch.
	MinBatchSize = 2000

	// MaxBatchSize bounds a single instanced draw.
	MaxBatchSize = 20000

	// DefaultBatchSize is the default instances per draw.
	DefaultBatchSize = 16384
)

// ClampBatchSize clamps n to [MinBatchSize, MaxBatchSize], mapping
// non-positive values to the default.
func ClampBatchSize(n int) int {
	if n <= 0 {
		return DefaultBatchSize
	}
	if n < MinBatchSize {
		return MinBatchSize
	}
	if n > MaxBatchSize {
		return MaxBatchSize
	}
	return n
}

// Instance is one tile as submitted to the GPU: a unit quad scaled by
// Side and translated to (X, Y), tinted by the color. Layout matches
// the instance attributes in shaders/tile.wgsl (32 bytes with padding).
type Instance struct {
	X, Y       float32
	Side       float32
	R, G, B, A float32
}

// InstanceStride is the byte stride of one packed instance, including
// the 4-byte pad after Side required by WGSL struct alignment.
const InstanceStride = 32

// FromTile converts a selected tile to an instance record.
func FromTile(t tilefield.Tile) Instance {
	return Instance{
		X:    float32(t.Pos.X),
		Y:    float32(t.Pos.Y),
		Side: float32(t.Side),
		R:    float32(t.Color.R),
		G:    float32(t.Color.G),
		B:    float32(t.Color.B),
		A:    float32(t.Color.A),
	}
}

// Renderer consumes per-frame instance sequences. Implementations
// split the sequence into instanced draws of at most their batch size.
//
// The contract back toward the core: a renderer signals surface
// resizes (so the camera can update its aspect) and catastrophic
// back-end loss (so the core can pause selection) through the
// callbacks its constructor accepts.
type Renderer interface {
	// Submit draws one frame's instances. An empty frame is valid and
	// clears to the background.
	Submit(instances []Instance) error

	// SetMatrix installs the column-major view-projection matrix used
	// for subsequent Submit calls.
	SetMatrix(m [16]float32)

	// Resize adjusts the drawing surface size in pixels.
	Resize(width, height int)

	// Close releases renderer resources. Submit after Close returns
	// ErrRendererClosed.
	Close() error
}
