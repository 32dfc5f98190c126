// Package quadtree provides a bounded-depth region quadtree over tile
// centers, supporting axis-aligned rectangle and point queries.
//
// Nodes live in a flat arena and reference each other by index, so the
// node structure is one contiguous slice; each node's bucket of items
// is its own slice. The tree is built once at startup and never mutated
// afterwards; queries are read-only and safe for concurrent use after
// the build completes.
package quadtree

import (
	"github.com/gogpu/tilefield"
)

// Defaults for tree construction.
const (
	// DefaultMaxDepth bounds subdivision depth.
	DefaultMaxDepth = 8

	// DefaultMaxItems is the bucket size that triggers subdivision.
	DefaultMaxItems = 10
)

// noChildren marks a node without children in the arena.
const noChildren = -1

// Option configures a Quadtree during creation.
type Option func(*Quadtree)

// WithMaxDepth overrides the maximum subdivision depth.
func WithMaxDepth(d int) Option {
	return func(q *Quadtree) {
		if d > 0 {
			q.maxDepth = d
		}
	}
}

// WithMaxItems overrides the bucket size that triggers subdivision.
func WithMaxItems(n int) Option {
	return func(q *Quadtree) {
		if n > 0 {
			q.maxItems = n
		}
	}
}

// item is a stored tile reference: the caller's index plus the tile's
// bounding square, captured at insert so queries never touch the tile
// slice.
type item struct {
	idx    int32
	bounds tilefield.Rect
}

// node is one arena entry. children is the arena index of the first of
// four consecutive child nodes, or noChildren. Child order: SW, SE,
// NW, NE (x varies fastest).
type node struct {
	bounds   tilefield.Rect
	children int32
	items    []item
}

// Quadtree is the arena-backed region quadtree.
type Quadtree struct {
	nodes    []node
	maxDepth int
	maxItems int
	count    int

	// maxSide tracks the largest inserted tile side. Pruning tests
	// expand the query rectangle by maxSide/2: a tile is stored by
	// center point, so its square can overhang the owning node's
	// bounds by at most half its side.
	maxSide float64
}

// New creates an empty quadtree covering the given root bounds.
func New(bounds tilefield.Rect, opts ...Option) *Quadtree {
	q := &Quadtree{
		nodes:    []node{{bounds: bounds, children: noChildren}},
		maxDepth: DefaultMaxDepth,
		maxItems: DefaultMaxItems,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Len returns the number of stored tiles.
func (q *Quadtree) Len() int { return q.count }

// Bounds returns the root bounds.
func (q *Quadtree) Bounds() tilefield.Rect { return q.nodes[0].bounds }

// Insert stores a reference to tile t under the caller's index idx.
// The tile is placed in the unique node whose bounds contain its
// center; a center outside the root bounds is accepted at the root, so
// no insert is ever dropped.
func (q *Quadtree) Insert(idx int32, t tilefield.Tile) {
	if t.Side > q.maxSide {
		q.maxSide = t.Side
	}
	q.insert(0, 0, item{idx: idx, bounds: t.Bounds()}, t.Pos.X, t.Pos.Y)
	q.count++
}

func (q *Quadtree) insert(ni int32, depth int, it item, cx, cy float64) {
	for {
		n := &q.nodes[ni]
		if n.children != noChildren {
			if ci := q.childFor(n, cx, cy); ci != noChildren {
				ni = ci
				depth++
				continue
			}
			// Center outside every child (outside this node's bounds):
			// hold it here.
			n.items = append(n.items, it)
			return
		}
		n.items = append(n.items, it)
		if len(n.items) > q.maxItems && depth < q.maxDepth {
			q.subdivide(ni, depth)
		}
		return
	}
}

// childFor returns the arena index of the child containing (cx, cy),
// or noChildren. Bounds are half-open, so a point on an internal
// boundary belongs to the higher-coordinate child.
func (q *Quadtree) childFor(n *node, cx, cy float64) int32 {
	if !n.bounds.ContainsPoint(cx, cy) {
		return noChildren
	}
	c := n.bounds.Center()
	ci := n.children
	if cx >= c.X {
		ci++
	}
	if cy >= c.Y {
		ci += 2
	}
	return ci
}

// subdivide splits node ni into four children and redistributes its
// bucket by center point. Items whose center is outside the node stay
// in the parent bucket.
func (q *Quadtree) subdivide(ni int32, depth int) {
	base := int32(len(q.nodes))
	b := q.nodes[ni].bounds
	c := b.Center()
	q.nodes = append(q.nodes,
		node{bounds: tilefield.Rect{MinX: b.MinX, MinY: b.MinY, MaxX: c.X, MaxY: c.Y}, children: noChildren},
		node{bounds: tilefield.Rect{MinX: c.X, MinY: b.MinY, MaxX: b.MaxX, MaxY: c.Y}, children: noChildren},
		node{bounds: tilefield.Rect{MinX: b.MinX, MinY: c.Y, MaxX: c.X, MaxY: b.MaxY}, children: noChildren},
		node{bounds: tilefield.Rect{MinX: c.X, MinY: c.Y, MaxX: b.MaxX, MaxY: b.MaxY}, children: noChildren},
	)

	n := &q.nodes[ni]
	n.children = base
	held := n.items
	n.items = nil
	for _, it := range held {
		cx, cy := it.bounds.Center().X, it.bounds.Center().Y
		if ci := q.childFor(&q.nodes[ni], cx, cy); ci != noChildren {
			q.insert(ci, depth+1, it, cx, cy)
		} else {
			q.nodes[ni].items = append(q.nodes[ni].items, it)
		}
	}
}

// QueryRange returns the indices of all tiles whose bounding square
// intersects rect.
func (q *Quadtree) QueryRange(rect tilefield.Rect) []int32 {
	return q.QueryRangeAppend(rect, nil)
}

// QueryRangeAppend appends matching indices to dst and returns the
// extended slice. The per-frame selection path uses this to reuse its
// candidate buffer across frames.
func (q *Quadtree) QueryRangeAppend(rect tilefield.Rect, dst []int32) []int32 {
	// Inflate the pruning rectangle: a stored square can overhang its
	// owning node by at most maxSide/2.
	loose := tilefield.Rect{
		MinX: rect.MinX - q.maxSide/2,
		MinY: rect.MinY - q.maxSide/2,
		MaxX: rect.MaxX + q.maxSide/2,
		MaxY: rect.MaxY + q.maxSide/2,
	}
	return q.queryRange(0, rect, loose, dst)
}

func (q *Quadtree) queryRange(ni int32, rect, loose tilefield.Rect, dst []int32) []int32 {
	n := &q.nodes[ni]
	for _, it := range n.items {
		if it.bounds.Intersects(rect) {
			dst = append(dst, it.idx)
		}
	}
	if n.children != noChildren {
		for ci := n.children; ci < n.children+4; ci++ {
			if q.nodes[ci].bounds.Intersects(loose) {
				dst = q.queryRange(ci, rect, loose, dst)
			}
		}
	}
	return dst
}

// QueryPoint returns the indices of all tiles whose bounding square
// contains (x, y).
func (q *Quadtree) QueryPoint(x, y float64) []int32 {
	pt := tilefield.Rect{MinX: x, MinY: y, MaxX: x, MaxY: y}
	var dst []int32
	return q.queryRange(0, pt, tilefield.Rect{
		MinX: x - q.maxSide/2, MinY: y - q.maxSide/2,
		MaxX: x + q.maxSide/2, MaxY: y + q.maxSide/2,
	}, dst)
}

// Depth returns the depth of the deepest node, for diagnostics. The
// root is at depth 0, the same count maxDepth bounds.
func (q *Quadtree) Depth() int {
	return q.depth(0)
}

func (q *Quadtree) depth(ni int32) int {
	n := &q.nodes[ni]
	if n.children == noChildren {
		return 0
	}
	max := 0
	for ci := n.children; ci < n.children+4; ci++ {
		if d := q.depth(ci); d > max {
			max = d
		}
	}
	return max + 1
}
