// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lod

import (
	"testing"

	"github.com/gogpu/tilefield"
	"github.com/gogpu/tilefield/grid"
	"github.com/gogpu/tilefield/quadtree"
)

// buildField assembles a generated field with its quadtree, pyramid,
// and selector, matching how the engine wires them.
func buildField(t testing.TB, cfg grid.Config, levels int) (*Selector, *Pyramid, []tilefield.Tile) {
	t.Helper()
	leaves := grid.Generate(cfg)
	pyr := BuildPyramid(leaves, levels, cfg.Side())

	qt := quadtree.New(grid.Bounds(cfg))
	for i := range leaves {
		qt.Insert(int32(i), leaves[i])
	}
	sel := NewSelector(pyr, qt, leaves, 0.1, 10)
	return sel, pyr, leaves
}

func TestBaseLevel_ZoomMonotonic(t *testing.T) {
	sel, _, _ := buildField(t, grid.Config{Radius: 20, Budget: 1000, Seed: 1}, 6)

	prev := -1
	for z := 0.1; z <= 10.0; z += 0.05 {
		base := sel.BaseLevel(z)
		if base < prev {
			t.Fatalf("base level decreased from %d to %d at zoom %v", prev, base, z)
		}
		if base < 0 || base > 5 {
			t.Fatalf("base level %d out of range at zoom %v", base, z)
		}
		prev = base
	}

	if sel.BaseLevel(0.1) != 0 {
		t.Errorf("BaseLevel(zMin) = %d, want 0", sel.BaseLevel(0.1))
	}
	if sel.BaseLevel(10) != 5 {
		t.Errorf("BaseLevel(zMax) = %d, want 5", sel.BaseLevel(10))
	}
}

func TestBaseLevel_OutOfRangeZoom(t *testing.T) {
	sel, _, _ := buildField(t, grid.Config{Radius: 20, Budget: 1000, Seed: 1}, 6)
	if sel.BaseLevel(-5) != 0 {
		t.Errorf("BaseLevel(-5) = %d, want 0", sel.BaseLevel(-5))
	}
	if sel.BaseLevel(100) != 5 {
		t.Errorf("BaseLevel(100) = %d, want 5", sel.BaseLevel(100))
	}
}

// No two tiles in an emitted frame share the same (level, cell).
func TestSelect_Dedup(t *testing.T) {
	cfg := grid.Config{Radius: 50, Budget: 9000, Seed: 5}
	sel, pyr, _ := buildField(t, cfg, 6)

	views := []tilefield.Rect{
		tilefield.RectAround(tilefield.Pt(0, 0), 133, 100),
		tilefield.RectAround(tilefield.Pt(30, -20), 400, 300),
		tilefield.RectAround(tilefield.Pt(0, 0), 1333, 1000),
	}
	zooms := []float64{0.1, 0.5, 1, 3, 7, 10}

	for _, view := range views {
		for _, zoom := range zooms {
			out := sel.Select(view, zoom)
			seen := make(map[tilefield.CellKey]bool, len(out))
			for _, tile := range out {
				key := tile.Cell(tile.Level, pyr.Side(tile.Level))
				if seen[key] {
					t.Fatalf("zoom %v view %+v: duplicate cell %+v", zoom, view, key)
				}
				seen[key] = true
			}
		}
	}
}

// At full zoom the viewport center gets leaf tiles and the far edge
// coarser ones.
func TestSelect_DistanceFalloff(t *testing.T) {
	cfg := grid.Config{Radius: 50, Budget: 9000, Seed: 5}
	sel, _, _ := buildField(t, cfg, 6)

	view := tilefield.RectAround(tilefield.Pt(0, 0), 100, 75)
	out := sel.Select(view, 10) // base level 5 (leaves)
	if len(out) == 0 {
		t.Fatal("empty selection over the disk center")
	}

	levelAt := func(x, y, within float64) (int, bool) {
		for _, tile := range out {
			if tile.Pos.Distance(tilefield.Pt(x, y)) <= within {
				return tile.Level, true
			}
		}
		return 0, false
	}

	center, ok := levelAt(0, 0, 2)
	if !ok {
		t.Fatal("no tile near viewport center")
	}
	if center != 5 {
		t.Errorf("center tile level = %d, want 5 (leaf)", center)
	}

	// d=45.3 from center: f=0.566, drop=1, so level 4. Every tile
	// within 1.5 of (32,32) sits at d >= 43.75 (f >= 0.547), still
	// drop=1; a wider probe would reach level-5 tiles below d=43.4.
	corner, ok := levelAt(32, 32, 1.5)
	if !ok {
		t.Fatal("no tile near viewport corner")
	}
	if corner >= center {
		t.Errorf("corner level %d not coarser than center level %d", corner, center)
	}
}

// At the center of view, distance zero means no drop; a tile at half
// the falloff reach still rounds to drop zero.
func TestSelect_NoDropWithinReach(t *testing.T) {
	cfg := grid.Config{Radius: 500, Budget: 9000, Seed: 2}
	sel, _, _ := buildField(t, cfg, 6)

	// The canvas-800x600 window at zoom 1.
	view := tilefield.Rect{MinX: -666.67, MinY: -500, MaxX: 666.67, MaxY: 500}
	out := sel.Select(view, 1)
	if len(out) == 0 {
		t.Fatal("empty selection")
	}

	// The farthest in-disk candidate sits 500 from center, where
	// f = 500/(0.8*1333) = 0.469 and drop = floor(2.5*0.469^1.5) = 0,
	// so the whole frame stays at the base level.
	base := sel.BaseLevel(1)
	for _, tile := range out {
		if tile.Level != base {
			t.Errorf("tile at %v level %d, want base %d", tile.Pos, tile.Level, base)
		}
	}
}

// A viewport away from the disk yields an empty frame, not an error.
func TestSelect_EmptyViewport(t *testing.T) {
	cfg := grid.Config{Radius: 20, Budget: 1000, Seed: 1}
	sel, _, _ := buildField(t, cfg, 6)

	out := sel.Select(tilefield.RectAround(tilefield.Pt(5000, 5000), 100, 100), 1)
	if len(out) != 0 {
		t.Fatalf("selection over empty space returned %d tiles", len(out))
	}
}

// A dropped pyramid level falls through to the next finer one.
func TestSelect_MissingLevelFallsThrough(t *testing.T) {
	cfg := grid.Config{Radius: 50, Budget: 9000, Seed: 5}
	sel, pyr, _ := buildField(t, cfg, 6)

	view := tilefield.RectAround(tilefield.Pt(0, 0), 133.3, 100)
	zoom := 5.0
	base := sel.BaseLevel(zoom)
	if base <= 0 || base >= 5 {
		t.Fatalf("test needs an intermediate base level, got %d", base)
	}

	pyr.DropLevel(base)
	out := sel.Select(view, zoom)
	if len(out) == 0 {
		t.Fatal("selection empty after dropping a level")
	}
	for _, tile := range out {
		if tile.Level == base {
			t.Fatalf("tile emitted at dropped level %d", base)
		}
	}
}

// The emitted set covers every candidate's cell: selection never
// leaves a hole where the quadtree reported a tile.
func TestSelect_NoGaps(t *testing.T) {
	cfg := grid.Config{Radius: 30, Budget: 2000, Seed: 8}
	sel, _, leaves := buildField(t, cfg, 6)

	view := tilefield.RectAround(tilefield.Pt(0, 0), 70, 70)
	out := sel.Select(view, 0.1) // coarsest base level

	covered := func(p tilefield.Point) bool {
		for _, tile := range out {
			h := tile.Side / 2
			if p.X >= tile.Pos.X-h && p.X <= tile.Pos.X+h &&
				p.Y >= tile.Pos.Y-h && p.Y <= tile.Pos.Y+h {
				return true
			}
		}
		return false
	}
	for _, leaf := range leaves {
		if !view.ContainsPoint(leaf.Pos.X, leaf.Pos.Y) {
			continue
		}
		if !covered(leaf.Pos) {
			t.Fatalf("leaf at %v not covered by any emitted tile", leaf.Pos)
		}
	}
}

func BenchmarkSelect(b *testing.B) {
	cfg := grid.Config{Radius: 250, Budget: 200000, Seed: 1}
	sel, _, _ := buildField(b, cfg, 6)
	view := tilefield.RectAround(tilefield.Pt(0, 0), 1333, 1000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sel.Select(view, 5)
	}
}
