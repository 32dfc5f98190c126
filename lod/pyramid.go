// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lod builds and queries the level-of-detail pyramid and runs
// the per-frame visible-tile selection over it.
//
// The pyramid holds L tile lists. Level L-1 is the original leaf set;
// each coarser level k partitions the plane into square cells of side
// side(k) = baseSide * 2^(L-1-k) and replaces the tiles of each
// occupied cell with one merged tile whose color is the component-wise
// mean of its constituents. Built once at startup, read-only after.
package lod

import (
	"github.com/gogpu/tilefield"
)

// DefaultLevels is the default pyramid depth.
const DefaultLevels = 6

// cell is a lattice coordinate used as a grouping key within a level.
type cell struct {
	gx, gy int64
}

// Pyramid is the L-level merge pyramid with a per-level cell index.
type Pyramid struct {
	levels   [][]tilefield.Tile
	index    []map[cell]int32
	baseSide float64
}

// BuildPyramid constructs the pyramid bottom-up from the leaf set.
// The leaves slice is referenced, not copied, and its tiles' Level
// fields are stamped to levels-1. baseSide must equal the leaf tile
// side; levels < 1 is clamped to 1.
func BuildPyramid(leaves []tilefield.Tile, levels int, baseSide float64) *Pyramid {
	if levels < 1 {
		levels = 1
	}
	if baseSide <= 0 {
		baseSide = 1
	}

	p := &Pyramid{
		levels:   make([][]tilefield.Tile, levels),
		index:    make([]map[cell]int32, levels),
		baseSide: baseSide,
	}

	leafLevel := levels - 1
	for i := range leaves {
		leaves[i].Level = leafLevel
	}
	p.levels[leafLevel] = leaves
	p.index[leafLevel] = indexLevel(leaves, baseSide)

	for k := leafLevel - 1; k >= 0; k-- {
		p.levels[k] = p.mergeLevel(k)
		p.index[k] = indexLevel(p.levels[k], p.Side(k))
	}
	return p
}

// mergeLevel produces level k by grouping level k+1 tiles into cells
// of side(k). Merged tiles appear in order of their first constituent,
// so the build is deterministic for a deterministic leaf set.
func (p *Pyramid) mergeLevel(k int) []tilefield.Tile {
	finer := p.levels[k+1]
	side := p.Side(k)

	slot := make(map[cell]int32, len(finer)/3+1)
	var merged []tilefield.Tile

	for i, t := range finer {
		gx, gy := tilefield.CellOf(t.Pos.X, t.Pos.Y, side)
		key := cell{gx, gy}
		si, ok := slot[key]
		if !ok {
			si = int32(len(merged))
			slot[key] = si
			merged = append(merged, tilefield.Tile{
				Pos: tilefield.Pt(
					(float64(gx)+0.5)*side,
					(float64(gy)+0.5)*side,
				),
				Side:  side,
				Level: k,
				Kind:  tilefield.Merged,
			})
		}
		merged[si].Children = append(merged[si].Children, int32(i))
	}

	// Second pass: colors and summary fields from the constituents.
	colors := make([]tilefield.RGBA, 0, 8)
	for i := range merged {
		m := &merged[i]
		colors = colors[:0]
		var dist, angle float64
		for _, ci := range m.Children {
			ct := finer[ci]
			colors = append(colors, ct.Color)
			dist += ct.Dist
			angle += ct.Angle
		}
		n := float64(len(m.Children))
		m.Color = tilefield.MeanRGBA(colors)
		m.Dist = dist / n
		m.Angle = angle / n
	}
	return merged
}

// indexLevel builds the cell -> slice-index map for one level.
func indexLevel(tiles []tilefield.Tile, side float64) map[cell]int32 {
	idx := make(map[cell]int32, len(tiles))
	for i, t := range tiles {
		gx, gy := tilefield.CellOf(t.Pos.X, t.Pos.Y, side)
		idx[cell{gx, gy}] = int32(i)
	}
	return idx
}

// Levels returns the pyramid depth L.
func (p *Pyramid) Levels() int { return len(p.levels) }

// Level returns the tile list at level k, or nil if k is out of range
// or the level was dropped.
func (p *Pyramid) Level(k int) []tilefield.Tile {
	if k < 0 || k >= len(p.levels) {
		return nil
	}
	return p.levels[k]
}

// Side returns the cell side length at level k:
// baseSide * 2^(L-1-k).
func (p *Pyramid) Side(k int) float64 {
	return p.baseSide * float64(int64(1)<<uint(len(p.levels)-1-k))
}

// BaseSide returns the leaf tile side.
func (p *Pyramid) BaseSide() float64 { return p.baseSide }

// Lookup returns the tile occupying cell (gx, gy) at level k. The
// second result is false if the level is absent or the cell is empty.
func (p *Pyramid) Lookup(k int, gx, gy int64) (tilefield.Tile, bool) {
	if k < 0 || k >= len(p.levels) || p.index[k] == nil {
		return tilefield.Tile{}, false
	}
	i, ok := p.index[k][cell{gx, gy}]
	if !ok {
		return tilefield.Tile{}, false
	}
	return p.levels[k][i], true
}

// DropLevel discards level k's tiles and index, as a builder under
// memory pressure would. The leaf level cannot be dropped. The
// selector tolerates a dropped level by falling through to the next
// finer one.
func (p *Pyramid) DropLevel(k int) {
	if k < 0 || k >= len(p.levels)-1 {
		return
	}
	p.levels[k] = nil
	p.index[k] = nil
}
