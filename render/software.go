// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/tilefield"
)

var _ Renderer = (*SoftwareRenderer)(nil)

// SoftwareRenderer is the CPU reference implementation of Renderer.
// It rasterizes instances into an image.RGBA under the same
// orthographic window the GPU pipeline uses, which makes frames
// directly assertable in tests and lets headless tools write PNGs.
type SoftwareRenderer struct {
	mu sync.Mutex

	img    *image.RGBA
	bounds tilefield.Rect
	bg     color.RGBA

	onResize func(width, height int)
	closed   bool
}

// SoftwareOption configures a SoftwareRenderer during creation.
type SoftwareOption func(*SoftwareRenderer)

// WithBackground sets the clear color (default opaque black).
func WithBackground(c color.RGBA) SoftwareOption {
	return func(r *SoftwareRenderer) { r.bg = c }
}

// WithSoftwareResizeHandler registers the resize callback, mirroring
// the GPU renderer's contract.
func WithSoftwareResizeHandler(fn func(width, height int)) SoftwareOption {
	return func(r *SoftwareRenderer) { r.onResize = fn }
}

// NewSoftwareRenderer creates a software renderer with the given
// surface size in pixels.
func NewSoftwareRenderer(width, height int, opts ...SoftwareOption) *SoftwareRenderer {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	r := &SoftwareRenderer{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		bg:  color.RGBA{A: 255},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetMatrix is accepted for interface compatibility; the software
// rasterizer projects through SetViewBounds instead, since the world
// window is what it actually needs.
func (r *SoftwareRenderer) SetMatrix(m [16]float32) {}

// SetViewBounds installs the world-space window mapped onto the image.
func (r *SoftwareRenderer) SetViewBounds(b tilefield.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bounds = b
}

// Submit rasterizes the frame. Each instance is an axis-aligned filled
// square; Y points up in world space and down in image space.
func (r *SoftwareRenderer) Submit(instances []Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}

	w := r.img.Bounds().Dx()
	h := r.img.Bounds().Dy()
	for i := 0; i < len(r.img.Pix); i += 4 {
		r.img.Pix[i+0] = r.bg.R
		r.img.Pix[i+1] = r.bg.G
		r.img.Pix[i+2] = r.bg.B
		r.img.Pix[i+3] = r.bg.A
	}

	bw := r.bounds.W()
	bh := r.bounds.H()
	if bw <= 0 || bh <= 0 {
		return nil
	}
	sx := float64(w) / bw
	sy := float64(h) / bh

	for _, in := range instances {
		half := float64(in.Side) / 2
		x0 := int((float64(in.X) - half - r.bounds.MinX) * sx)
		x1 := int((float64(in.X) + half - r.bounds.MinX) * sx)
		y0 := int((r.bounds.MaxY - (float64(in.Y) + half)) * sy)
		y1 := int((r.bounds.MaxY - (float64(in.Y) - half)) * sy)
		if x1 <= x0 {
			x1 = x0 + 1
		}
		if y1 <= y0 {
			y1 = y0 + 1
		}
		c := color.RGBA{
			R: clampByte(in.R * 255),
			G: clampByte(in.G * 255),
			B: clampByte(in.B * 255),
			A: clampByte(in.A * 255),
		}
		for y := max(y0, 0); y < min(y1, h); y++ {
			for x := max(x0, 0); x < min(x1, w); x++ {
				r.img.SetRGBA(x, y, c)
			}
		}
	}
	return nil
}

// Resize reallocates the surface and signals the resize handler.
func (r *SoftwareRenderer) Resize(width, height int) {
	r.mu.Lock()
	if width > 0 && height > 0 {
		r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	fn := r.onResize
	r.mu.Unlock()
	if fn != nil {
		fn(width, height)
	}
}

// Close marks the renderer closed.
func (r *SoftwareRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Image returns the last rendered frame. The returned image is shared;
// callers that hold it across frames should copy it.
func (r *SoftwareRenderer) Image() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.img
}

// Snapshot returns a copy of the last frame scaled by the given
// factor, e.g. 0.25 for a quarter-size thumbnail.
func (r *SoftwareRenderer) Snapshot(scale float64) *image.RGBA {
	r.mu.Lock()
	src := r.img
	r.mu.Unlock()

	if scale <= 0 || scale == 1 {
		dst := image.NewRGBA(src.Bounds())
		copy(dst.Pix, src.Pix)
		return dst
	}
	w := max(1, int(float64(src.Bounds().Dx())*scale))
	h := max(1, int(float64(src.Bounds().Dy())*scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
