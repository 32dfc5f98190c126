package tilefield

import "math"

// Kind discriminates the two tile variants.
type Kind uint8

const (
	// Leaf is an original generator-produced tile at the finest level.
	Leaf Kind = iota

	// Merged is a summary tile at a coarser level whose color is the
	// mean of its constituents.
	Merged
)

// String returns the string representation of the tile kind.
func (k Kind) String() string {
	switch k {
	case Leaf:
		return "Leaf"
	case Merged:
		return "Merged"
	default:
		return "Unknown"
	}
}

// Tile is an immutable square tile record. Leaf tiles are produced by
// the grid generator; merged tiles by the LOD pyramid builder.
//
// Children holds, for a merged tile, the indices of its constituent
// tiles in the next finer pyramid level. Leaves have no children. The
// member count of every cell at level k sums to the tile count of
// level k+1, which is what makes the pyramid auditable level by level.
type Tile struct {
	// Pos is the tile center in world space.
	Pos Point

	// Side is the tile side length, > 0.
	Side float64

	// Color has components in [0, 1]. Bad leaves are red, good leaves
	// white, merged tiles the mean of their constituents.
	Color RGBA

	// Dist is the normalized radial distance |Pos|/R in [0, 1].
	Dist float64

	// Angle is the normalized angle (atan2(y,x)+pi)/2pi in [0, 1).
	Angle float64

	// Level is the LOD level index in [0, L). Level L-1 is the leaf set.
	Level int

	// Kind tags the variant.
	Kind Kind

	// Bad marks a leaf flagged by the generator's Bernoulli draw.
	Bad bool

	// Children indexes the constituents in the next finer level.
	// Empty for leaves.
	Children []int32
}

// Bounds returns the tile's axis-aligned bounding square.
func (t Tile) Bounds() Rect {
	return RectAround(t.Pos, t.Side, t.Side)
}

// CellKey identifies a square cell of the level-ℓ lattice.
type CellKey struct {
	Level  int
	GX, GY int64
}

// CellOf returns the lattice coordinates of the cell of side `side`
// containing (x, y).
func CellOf(x, y, side float64) (int64, int64) {
	return int64(math.Floor(x / side)), int64(math.Floor(y / side))
}

// Cell returns the tile's cell key for a lattice of the given side.
func (t Tile) Cell(level int, side float64) CellKey {
	gx, gy := CellOf(t.Pos.X, t.Pos.Y, side)
	return CellKey{Level: level, GX: gx, GY: gy}
}
