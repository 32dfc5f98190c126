// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lod

import (
	"math"
	"testing"

	"github.com/gogpu/tilefield"
	"github.com/gogpu/tilefield/grid"
)

// leafBlock builds an n x n block of unit leaf tiles with centers at
// (i+0.5, j+0.5).
func leafBlock(n int) []tilefield.Tile {
	tiles := make([]tilefield.Tile, 0, n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			tiles = append(tiles, tilefield.Tile{
				Pos:   tilefield.Pt(float64(i)+0.5, float64(j)+0.5),
				Side:  1,
				Color: tilefield.White,
				Kind:  tilefield.Leaf,
			})
		}
	}
	return tiles
}

func TestPyramid_Sides(t *testing.T) {
	p := BuildPyramid(leafBlock(4), 6, 1)
	tests := []struct {
		level  int
		expect float64
	}{
		{5, 1}, {4, 2}, {3, 4}, {2, 8}, {1, 16}, {0, 32},
	}
	for _, tt := range tests {
		if got := p.Side(tt.level); got != tt.expect {
			t.Errorf("Side(%d) = %v, want %v", tt.level, got, tt.expect)
		}
	}
}

// Scenario: a 10x10 leaf block with L=6 and unit base side produces
// exactly 25 level-4 merged tiles of side 2 covering the same region.
func TestPyramid_TenByTenBlock(t *testing.T) {
	p := BuildPyramid(leafBlock(10), 6, 1)

	l4 := p.Level(4)
	if len(l4) != 25 {
		t.Fatalf("level 4 count = %d, want 25", len(l4))
	}
	for _, m := range l4 {
		if m.Side != 2 {
			t.Fatalf("level 4 side = %v, want 2", m.Side)
		}
		if m.Kind != tilefield.Merged {
			t.Fatalf("level 4 kind = %v, want Merged", m.Kind)
		}
		if len(m.Children) != 4 {
			t.Fatalf("level 4 members = %d, want 4", len(m.Children))
		}
	}

	if got := p.Side(0); got != 32 {
		t.Fatalf("Side(0) = %v, want 32", got)
	}
	if len(p.Level(0)) != 1 {
		t.Fatalf("level 0 count = %d, want 1", len(p.Level(0)))
	}
}

// Conservation: member counts at level k sum to the tile count of
// level k+1, at every level, so no tile is lost or double-counted by
// the merge.
func TestPyramid_Conservation(t *testing.T) {
	leaves := grid.Generate(grid.Config{Radius: 40, Budget: 4000, BadRate: 0.01, Seed: 9})
	p := BuildPyramid(leaves, 6, grid.Config{Radius: 40, Budget: 4000}.Side())

	for k := 0; k < p.Levels()-1; k++ {
		sum := 0
		for _, m := range p.Level(k) {
			sum += len(m.Children)
		}
		if sum != len(p.Level(k+1)) {
			t.Errorf("level %d: member sum %d != %d tiles at level %d",
				k, sum, len(p.Level(k+1)), k+1)
		}
	}
}

// Color convexity: each merged channel lies within the min/max of its
// constituents' channels.
func TestPyramid_ColorConvexity(t *testing.T) {
	leaves := grid.Generate(grid.Config{Radius: 30, Budget: 2000, BadRate: 0.2, Seed: 11})
	cfg := grid.Config{Radius: 30, Budget: 2000}
	p := BuildPyramid(leaves, 5, cfg.Side())

	for k := 0; k < p.Levels()-1; k++ {
		finer := p.Level(k + 1)
		for _, m := range p.Level(k) {
			for _, get := range []func(tilefield.RGBA) float64{
				func(c tilefield.RGBA) float64 { return c.R },
				func(c tilefield.RGBA) float64 { return c.G },
				func(c tilefield.RGBA) float64 { return c.B },
				func(c tilefield.RGBA) float64 { return c.A },
			} {
				lo, hi := math.Inf(1), math.Inf(-1)
				for _, ci := range m.Children {
					v := get(finer[ci].Color)
					lo = math.Min(lo, v)
					hi = math.Max(hi, v)
				}
				if v := get(m.Color); v < lo-1e-9 || v > hi+1e-9 {
					t.Fatalf("level %d: channel %v outside members' [%v, %v]", k, v, lo, hi)
				}
			}
		}
	}
}

// A merged tile's own center maps back to its cell key, so parent
// lookups agree with how the level was built.
func TestLookup_OwnCellRoundTrip(t *testing.T) {
	leaves := grid.Generate(grid.Config{Radius: 25, Budget: 1500, Seed: 3})
	p := BuildPyramid(leaves, 6, grid.Config{Radius: 25, Budget: 1500}.Side())

	for k := 0; k < p.Levels(); k++ {
		side := p.Side(k)
		for _, tile := range p.Level(k) {
			gx, gy := tilefield.CellOf(tile.Pos.X, tile.Pos.Y, side)
			got, ok := p.Lookup(k, gx, gy)
			if !ok {
				t.Fatalf("level %d: cell (%d,%d) of own tile not found", k, gx, gy)
			}
			if got.Pos != tile.Pos {
				t.Fatalf("level %d: lookup returned tile at %v, want %v", k, got.Pos, tile.Pos)
			}
		}
	}
}

// Every leaf is reachable from level 0 through member chains.
func TestPyramid_LeafReachability(t *testing.T) {
	leaves := leafBlock(8)
	p := BuildPyramid(leaves, 4, 1)

	reached := make([]bool, len(leaves))
	var walk func(k int, tile tilefield.Tile)
	walk = func(k int, tile tilefield.Tile) {
		if k == p.Levels()-1 {
			// Identify the leaf by its unique lattice position.
			for i, l := range leaves {
				if l.Pos == tile.Pos {
					reached[i] = true
				}
			}
			return
		}
		finer := p.Level(k + 1)
		for _, ci := range tile.Children {
			walk(k+1, finer[ci])
		}
	}
	for _, top := range p.Level(0) {
		walk(0, top)
	}
	for i, ok := range reached {
		if !ok {
			t.Fatalf("leaf %d unreachable from level 0", i)
		}
	}
}

func TestPyramid_DropLevel(t *testing.T) {
	p := BuildPyramid(leafBlock(4), 4, 1)

	p.DropLevel(1)
	if p.Level(1) != nil {
		t.Fatal("dropped level still present")
	}
	if _, ok := p.Lookup(1, 0, 0); ok {
		t.Fatal("lookup succeeded on dropped level")
	}

	// The leaf level cannot be dropped.
	p.DropLevel(p.Levels() - 1)
	if p.Level(p.Levels()-1) == nil {
		t.Fatal("leaf level was dropped")
	}
}

func TestPyramid_SingleLevel(t *testing.T) {
	leaves := leafBlock(3)
	p := BuildPyramid(leaves, 1, 1)
	if p.Levels() != 1 {
		t.Fatalf("Levels() = %d, want 1", p.Levels())
	}
	if len(p.Level(0)) != 9 {
		t.Fatalf("single level holds %d tiles, want 9", len(p.Level(0)))
	}
}

func BenchmarkBuildPyramid(b *testing.B) {
	leaves := grid.Generate(grid.Config{Radius: 250, Budget: 200000, Seed: 1})
	side := grid.Config{Radius: 250, Budget: 200000}.Side()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildPyramid(leaves, 6, side)
	}
}
