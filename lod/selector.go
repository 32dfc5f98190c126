// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lod

import (
	"math"

	"github.com/gogpu/tilefield"
	"github.com/gogpu/tilefield/quadtree"
)

// Selection tuning constants, matching the falloff the field was
// designed around: sub-linear zoom response so coarse levels dominate
// zoomed out, and a radial drop that coarsens the viewport edges.
const (
	// zoomExponent shapes the zoom -> base level curve.
	zoomExponent = 0.8

	// falloffRadius is the fraction of the larger viewport dimension
	// at which the distance falloff saturates.
	falloffRadius = 0.8

	// falloffScale and falloffExponent shape the per-tile level drop.
	falloffScale    = 2.5
	falloffExponent = 1.5
)

// Selector computes the per-frame visible tile set. It reuses internal
// scratch buffers across frames, so a Selector must not be shared
// between goroutines; the engine drives one selector from its frame
// loop.
type Selector struct {
	pyr    *Pyramid
	qt     *quadtree.Quadtree
	leaves []tilefield.Tile
	zMin   float64
	zMax   float64

	seen map[tilefield.CellKey]struct{}
	cand []int32
	out  []tilefield.Tile
}

// NewSelector creates a selector over a built pyramid and quadtree.
// leaves must be the same slice the quadtree was built from. zMin and
// zMax are the camera zoom clamp bounds.
func NewSelector(pyr *Pyramid, qt *quadtree.Quadtree, leaves []tilefield.Tile, zMin, zMax float64) *Selector {
	return &Selector{
		pyr:    pyr,
		qt:     qt,
		leaves: leaves,
		zMin:   zMin,
		zMax:   zMax,
		seen:   make(map[tilefield.CellKey]struct{}, 4096),
	}
}

// BaseLevel returns the zoom-derived base LOD level:
// floor(u * (L-1)) with u = clamp01(((z-zMin)/(zMax-zMin))^zoomExponent).
// Non-decreasing in z, so zooming in never coarsens the base level.
func (s *Selector) BaseLevel(zoom float64) int {
	maxLevel := s.pyr.Levels() - 1
	if maxLevel <= 0 {
		return 0
	}
	u := (zoom - s.zMin) / (s.zMax - s.zMin)
	if math.IsNaN(u) || u < 0 {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	u = math.Pow(u, zoomExponent)
	base := int(u * float64(maxLevel))
	if base > maxLevel {
		base = maxLevel
	}
	return base
}

// Select computes the tiles to draw for the given viewport rectangle
// and zoom. Exactly one tile is emitted per occupied (level, cell)
// pair. The returned slice is valid until the next Select call.
func (s *Selector) Select(view tilefield.Rect, zoom float64) []tilefield.Tile {
	s.out = s.out[:0]
	clear(s.seen)

	s.cand = s.qt.QueryRangeAppend(view, s.cand[:0])
	if len(s.cand) == 0 {
		return s.out
	}

	base := s.BaseLevel(zoom)
	maxLevel := s.pyr.Levels() - 1
	center := view.Center()
	dim := math.Max(view.W(), view.H())
	reach := falloffRadius * dim

	for _, idx := range s.cand {
		t := &s.leaves[idx]

		target := base
		if reach > 0 {
			f := t.Pos.Distance(center) / reach
			if f > 1 {
				f = 1
			}
			drop := int(falloffScale * math.Pow(f, falloffExponent))
			target -= drop
			if target < 0 {
				target = 0
			}
		}

		side := s.pyr.Side(target)
		gx, gy := tilefield.CellOf(t.Pos.X, t.Pos.Y, side)
		key := tilefield.CellKey{Level: target, GX: gx, GY: gy}
		if _, dup := s.seen[key]; dup {
			continue
		}

		if mt, ok := s.pyr.Lookup(target, gx, gy); ok {
			s.out = append(s.out, mt)
			s.seen[key] = struct{}{}
			continue
		}

		// The cell is absent at the target level (a dropped level, or a
		// coarse cell never built). Search finer levels one at a time
		// and emit everything found in the first occupied one. The
		// emissions are deduplicated under their own finer cell keys,
		// so candidates mapping to different cells are not suppressed.
		if target < maxLevel && s.emitFiner(target, gx, gy, maxLevel) {
			s.seen[key] = struct{}{}
			continue
		}

		// Nothing at any level: fall back to the candidate itself.
		s.out = append(s.out, *t)
		s.seen[key] = struct{}{}
	}
	return s.out
}

// emitFiner walks levels finer than target and emits every tile found
// in the sub-cells of (gx, gy) at the first level holding at least
// one. Each emission is recorded under its own (level, cell) key so a
// frame never draws the same cell twice, whichever path reached it.
func (s *Selector) emitFiner(target int, gx, gy int64, maxLevel int) bool {
	for lvl := target + 1; lvl <= maxLevel; lvl++ {
		m := int64(1) << uint(lvl-target)
		found := false
		for sy := int64(0); sy < m; sy++ {
			for sx := int64(0); sx < m; sx++ {
				cx, cy := gx*m+sx, gy*m+sy
				mt, ok := s.pyr.Lookup(lvl, cx, cy)
				if !ok {
					continue
				}
				found = true
				subKey := tilefield.CellKey{Level: lvl, GX: cx, GY: cy}
				if _, dup := s.seen[subKey]; dup {
					continue
				}
				s.seen[subKey] = struct{}{}
				s.out = append(s.out, mt)
			}
		}
		if found {
			return true
		}
	}
	return false
}
