// Package grid generates the disk-shaped tile lattice.
//
// Given a disk radius and a global tile-count budget, the generator
// chooses a uniform tile side so the number of disk-covered lattice
// cells stays within budget, then emits one leaf tile per cell whose
// center falls inside the disk.
package grid

import (
	"math"
	"math/rand/v2"

	"github.com/gogpu/tilefield"
)

// Defaults for generator configuration.
const (
	// DefaultRadius is the default disk radius in world units.
	DefaultRadius = 500.0

	// DefaultBudget is the default target maximum tile count.
	DefaultBudget = 900_000

	// DefaultBadRate is the default Bernoulli rate for bad-data tiles.
	DefaultBadRate = 0.005

	// MinSide is the lower clamp on the computed tile side.
	MinSide = 1.0
)

// Config configures a generation run. Invalid values are clamped, not
// rejected: Radius to at least 1, Budget to at least 1, BadRate to
// [0, 1].
type Config struct {
	// Radius is the disk radius R.
	Radius float64

	// Budget is the target maximum tile count B.
	Budget int

	// BadRate is the probability that a tile is flagged bad.
	BadRate float64

	// Seed seeds the generator's PRNG. The PRNG is the only source of
	// randomness, so equal configs generate identical fields.
	Seed uint64
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() Config {
	return Config{
		Radius:  DefaultRadius,
		Budget:  DefaultBudget,
		BadRate: DefaultBadRate,
	}
}

// clamped returns a copy of c with out-of-range values clamped.
func (c Config) clamped() Config {
	if c.Radius < 1 {
		c.Radius = 1
	}
	if c.Budget < 1 {
		c.Budget = 1
	}
	if c.BadRate < 0 {
		c.BadRate = 0
	}
	if c.BadRate > 1 {
		c.BadRate = 1
	}
	return c
}

// Side returns the tile side length the generator will use for c:
// max(MinSide, sqrt(pi*R^2/B)), so the count of disk-covered cells
// does not exceed the budget.
func (c Config) Side() float64 {
	c = c.clamped()
	return math.Max(MinSide, math.Sqrt(math.Pi*c.Radius*c.Radius/float64(c.Budget)))
}

// Dim returns the lattice dimension: the generated grid spans
// Dim x Dim cells centered on the origin, Dim = 2*ceil(R/s).
func (c Config) Dim() int {
	c = c.clamped()
	return 2 * int(math.Ceil(c.Radius/c.Side()))
}

// Generate produces the full leaf tile set for c. Tiles whose lattice
// cell center falls outside the disk are not emitted, so adjacent
// emitted tiles are side-abutting with no gaps and no overlap.
func Generate(c Config) []tilefield.Tile {
	c = c.clamped()
	dim := c.Dim()
	tiles := make([]tilefield.Tile, 0, estimateCount(c))
	tiles = GenerateRows(c, 0, dim, tiles)
	if len(tiles) == 0 {
		// Degenerate budget: the lattice is so coarse that no cell
		// center lands in the disk. Emit the center cell so the count
		// stays within [0.5, 1.1]*B even for B=1.
		tiles = append(tiles, tilefield.Tile{
			Pos:   tilefield.Pt(0, 0),
			Side:  c.Side(),
			Color: tilefield.White,
			Kind:  tilefield.Leaf,
			Level: -1,
		})
	}
	return tiles
}

// GenerateRows emits the tiles of lattice rows [rowLo, rowHi) into dst
// and returns the extended slice. Rows partition the field, so callers
// can fan row ranges out across workers and concatenate the results;
// each row draws from its own PRNG stream derived from the config seed
// and the row index, keeping the field identical however it is
// partitioned.
func GenerateRows(c Config, rowLo, rowHi int, dst []tilefield.Tile) []tilefield.Tile {
	c = c.clamped()
	s := c.Side()
	dim := c.Dim()
	half := float64(dim) / 2
	r2 := c.Radius * c.Radius

	if rowLo < 0 {
		rowLo = 0
	}
	if rowHi > dim {
		rowHi = dim
	}

	for row := rowLo; row < rowHi; row++ {
		rng := rand.New(rand.NewPCG(c.Seed, uint64(row)))
		y := (float64(row) - half + 0.5) * s
		for col := 0; col < dim; col++ {
			x := (float64(col) - half + 0.5) * s
			d2 := x*x + y*y
			if d2 > r2 {
				// Still advance the stream so the bad-tile pattern of a
				// row does not depend on how many cells the disk clips.
				rng.Float64()
				continue
			}
			bad := rng.Float64() < c.BadRate
			color := tilefield.White
			if bad {
				color = tilefield.Red
			}
			dst = append(dst, tilefield.Tile{
				Pos:   tilefield.Pt(x, y),
				Side:  s,
				Color: color,
				Dist:  math.Sqrt(d2) / c.Radius,
				Angle: normAngle(x, y),
				Level: -1, // stamped by the pyramid builder
				Kind:  tilefield.Leaf,
				Bad:   bad,
			})
		}
	}
	return dst
}

// normAngle maps atan2 output to [0, 1).
func normAngle(x, y float64) float64 {
	a := (math.Atan2(y, x) + math.Pi) / (2 * math.Pi)
	if a >= 1 {
		a = 0
	}
	return a
}

// estimateCount approximates the emitted tile count, pi*R^2/s^2.
func estimateCount(c Config) int {
	s := c.Side()
	return int(math.Pi * c.Radius * c.Radius / (s * s))
}

// Bounds returns the square world-space region enclosing the whole
// lattice, suitable as quadtree root bounds.
func Bounds(c Config) tilefield.Rect {
	c = c.clamped()
	half := float64(c.Dim()) / 2 * c.Side()
	return tilefield.Rect{MinX: -half, MinY: -half, MaxX: half, MaxY: half}
}
