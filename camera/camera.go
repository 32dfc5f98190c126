// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package camera implements pan/zoom navigation over the tile field
// and the orthographic projection the renderer consumes.
//
// Input events mutate only the pan target; the rendered position moves
// toward it by a smoothing factor once per frame. Degenerate math is
// never allowed to escape: a non-finite projection candidate is
// rejected and the last known good matrix retained, and view bounds
// computed from non-finite state fall back to a fixed default window.
package camera

import (
	"math"
	"sync"

	"github.com/gogpu/tilefield"
)

// Default camera parameters.
const (
	// DefaultZoomMin and DefaultZoomMax clamp the zoom scalar.
	DefaultZoomMin = 0.1
	DefaultZoomMax = 10.0

	// DefaultPanSpeed converts pixel deltas to world units at zoom 1.
	DefaultPanSpeed = 0.25

	// DefaultPanLimit clamps the pan target to [-limit, limit] per axis.
	DefaultPanLimit = 10000.0

	// DefaultSmoothing is the per-frame approach factor toward the pan
	// target.
	DefaultSmoothing = 0.2

	// DefaultZoomSpeed scales a zoom input step.
	DefaultZoomSpeed = 0.5

	// windowScale is the world-window height at zoom 1.
	windowScale = 1000.0
)

// defaultBounds is the view window returned when camera state is not
// finite.
var defaultBounds = tilefield.Rect{MinX: -500, MinY: -500, MaxX: 500, MaxY: 500}

// Option configures a Camera during creation.
type Option func(*Camera)

// WithZoomRange overrides the zoom clamp bounds. Ignored unless
// 0 < min < max.
func WithZoomRange(min, max float64) Option {
	return func(c *Camera) {
		if min > 0 && min < max {
			c.zoomMin, c.zoomMax = min, max
		}
	}
}

// WithPanSpeed overrides the pan speed factor.
func WithPanSpeed(s float64) Option {
	return func(c *Camera) {
		if s > 0 {
			c.panSpeed = s
		}
	}
}

// WithPanLimit overrides the pan clamp limit.
func WithPanLimit(l float64) Option {
	return func(c *Camera) {
		if l > 0 {
			c.panLimit = l
		}
	}
}

// WithSmoothing overrides the per-frame smoothing factor alpha in
// (0, 1]. Alpha 1 disables smoothing: the rendered position jumps to
// the pan target on the next Step.
func WithSmoothing(alpha float64) Option {
	return func(c *Camera) {
		if alpha > 0 && alpha <= 1 {
			c.smoothing = alpha
		}
	}
}

// WithZoomSpeed overrides the zoom step scale.
func WithZoomSpeed(s float64) Option {
	return func(c *Camera) {
		if s > 0 {
			c.zoomSpeed = s
		}
	}
}

// Snapshot is an immutable copy of the camera state taken at the start
// of a frame, so concurrent input can never tear a frame's projection.
type Snapshot struct {
	Position tilefield.Point
	Zoom     float64
	Bounds   tilefield.Rect
	Matrix   [16]float32
}

// Camera holds navigation state. Safe for concurrent use: input
// handlers and the frame loop may run on different goroutines.
type Camera struct {
	mu sync.Mutex

	pos    tilefield.Point // rendered position P
	target tilefield.Point // pan target P*
	zoom   float64
	aspect float64

	matrix   [16]float32
	lastGood [16]float32

	zoomMin, zoomMax float64
	panSpeed         float64
	panLimit         float64
	smoothing        float64
	zoomSpeed        float64
}

// New creates a camera at the origin with zoom 1 and aspect 1.
func New(opts ...Option) *Camera {
	c := &Camera{
		zoom:      1,
		aspect:    1,
		zoomMin:   DefaultZoomMin,
		zoomMax:   DefaultZoomMax,
		panSpeed:  DefaultPanSpeed,
		panLimit:  DefaultPanLimit,
		smoothing: DefaultSmoothing,
		zoomSpeed: DefaultZoomSpeed,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastGood = orthoMatrix(defaultBounds)
	c.matrix = c.lastGood
	c.updateMatrixLocked()
	return c
}

// Pan applies a pixel-delta pan to the target position. Screen-down
// maps to world-up, so dy is not negated while dx is. The world step
// is panSpeed / max(0.1, zoom) per pixel.
func (c *Camera) Pan(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	scale := c.panSpeed / math.Max(0.1, c.zoom)
	c.target.X = clampAxis(c.target.X-dx*scale, c.panLimit)
	c.target.Y = clampAxis(c.target.Y+dy*scale, c.panLimit)
}

// Zoom applies a signed zoom step, clamped to the zoom range.
func (c *Camera) Zoom(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setZoomLocked(c.zoom + delta*c.zoomSpeed)
}

// SetZoom positions the zoom directly, clamped to the zoom range.
func (c *Camera) SetZoom(z float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setZoomLocked(z)
}

func (c *Camera) setZoomLocked(z float64) {
	if math.IsNaN(z) {
		tilefield.Logger().Warn("camera: rejecting NaN zoom")
		return
	}
	c.zoom = math.Min(math.Max(z, c.zoomMin), c.zoomMax)
	c.updateMatrixLocked()
}

// Reset returns the camera to the origin at zoom 1.
func (c *Camera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = tilefield.Point{}
	c.target = tilefield.Point{}
	c.zoom = 1
	c.updateMatrixLocked()
}

// SetAspect updates the viewport aspect from the drawing surface size.
// The renderer calls this from its resize signal. Degenerate sizes are
// rejected and the previous aspect retained.
func (c *Camera) SetAspect(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width <= 0 || height <= 0 {
		tilefield.Logger().Warn("camera: rejecting degenerate surface size",
			"width", width, "height", height)
		return
	}
	c.aspect = float64(width) / float64(height)
	c.updateMatrixLocked()
}

// SetPosition places both the rendered position and the pan target.
// Useful for tests and for restoring a saved viewpoint; no clamping or
// finiteness check is applied, the downstream guards handle bad values.
func (c *Camera) SetPosition(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = tilefield.Pt(x, y)
	c.target = c.pos
	c.updateMatrixLocked()
}

// Step advances the rendered position toward the pan target by the
// smoothing factor. Call once per rendered frame.
func (c *Camera) Step() {
	c.mu.Lock()
	defer c.mu.Unlock()
	delta := c.target.Sub(c.pos).Mul(c.smoothing)
	c.pos = c.pos.Add(delta)
	c.updateMatrixLocked()
}

// Position returns the rendered position P.
func (c *Camera) Position() tilefield.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Target returns the pan target P*.
func (c *Camera) Target() tilefield.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// ZoomLevel returns the current zoom scalar.
func (c *Camera) ZoomLevel() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// ViewBounds returns the world-space window visible through the
// current projection: windowScale*aspect/zoom wide and
// windowScale/zoom tall, centered on the rendered position. Non-finite
// camera state yields the fixed default window.
func (c *Camera) ViewBounds() tilefield.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewBoundsLocked()
}

func (c *Camera) viewBoundsLocked() tilefield.Rect {
	if !c.pos.IsFinite() || !isFinite(c.zoom) || c.zoom <= 0 || !isFinite(c.aspect) || c.aspect <= 0 {
		tilefield.Logger().Warn("camera: non-finite state, using default view bounds",
			"x", c.pos.X, "y", c.pos.Y, "zoom", c.zoom)
		return defaultBounds
	}
	w := windowScale * c.aspect / c.zoom
	h := windowScale / c.zoom
	return tilefield.RectAround(c.pos, w, h)
}

// Matrix returns the current column-major 4x4 orthographic projection.
// Every entry is finite: a candidate matrix with a non-finite entry is
// rejected and the last known good matrix returned instead.
func (c *Camera) Matrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrixLocked()
	return c.matrix
}

// Snapshot returns an immutable copy of the camera state for one frame.
func (c *Camera) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrixLocked()
	return Snapshot{
		Position: c.pos,
		Zoom:     c.zoom,
		Bounds:   c.viewBoundsLocked(),
		Matrix:   c.matrix,
	}
}

// updateMatrixLocked recomputes the projection. Non-finite camera
// state or a non-finite result leaves the last good matrix in place.
func (c *Camera) updateMatrixLocked() {
	if !c.pos.IsFinite() || !isFinite(c.zoom) || c.zoom <= 0 {
		c.matrix = c.lastGood
		return
	}
	m := orthoMatrix(c.viewBoundsLocked())
	for _, v := range m {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			tilefield.Logger().Warn("camera: rejecting non-finite projection matrix")
			c.matrix = c.lastGood
			return
		}
	}
	c.matrix = m
	c.lastGood = m
}

// orthoMatrix builds a column-major orthographic projection over the
// given window with near -1 and far 1.
func orthoMatrix(b tilefield.Rect) [16]float32 {
	l, r := b.MinX, b.MaxX
	bo, t := b.MinY, b.MaxY
	const n, f = -1.0, 1.0

	var m [16]float32
	m[0] = float32(2 / (r - l))
	m[5] = float32(2 / (t - bo))
	m[10] = float32(-2 / (f - n))
	m[12] = float32(-(r + l) / (r - l))
	m[13] = float32(-(t + bo) / (t - bo))
	m[14] = float32(-(f + n) / (f - n))
	m[15] = 1
	return m
}

// clampAxis clamps v to [-limit, limit]. NaN propagates so the view
// bounds and matrix guards can catch it downstream.
func clampAxis(v, limit float64) float64 {
	if v < -limit {
		return -limit
	}
	if v > limit {
		return limit
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
