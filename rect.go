package tilefield

// Rect is an axis-aligned rectangle in world space.
// MinX <= MaxX and MinY <= MaxY for a well-formed rectangle.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// RectAround returns the rectangle of the given width and height
// centered on c.
func RectAround(c Point, w, h float64) Rect {
	return Rect{
		MinX: c.X - w/2,
		MinY: c.Y - h/2,
		MaxX: c.X + w/2,
		MaxY: c.Y + h/2,
	}
}

// W returns the rectangle width.
func (r Rect) W() float64 { return r.MaxX - r.MinX }

// H returns the rectangle height.
func (r Rect) H() float64 { return r.MaxY - r.MinY }

// Center returns the rectangle center point.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Intersects reports whether r and s overlap. Touching edges count as
// an intersection, so side-abutting tiles on a query boundary are
// still reported.
func (r Rect) Intersects(s Rect) bool {
	return r.MinX <= s.MaxX && r.MaxX >= s.MinX &&
		r.MinY <= s.MaxY && r.MaxY >= s.MinY
}

// ContainsPoint reports whether (x, y) lies in r under half-open
// semantics: x in [MinX, MaxX) and y in [MinY, MaxY). A point exactly
// on a shared boundary therefore belongs to the higher-coordinate
// neighbor, so quadtree children partition their parent exactly.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// ContainsRect reports whether s lies entirely within r (closed bounds).
func (r Rect) ContainsRect(s Rect) bool {
	return s.MinX >= r.MinX && s.MaxX <= r.MaxX &&
		s.MinY >= r.MinY && s.MaxY <= r.MaxY
}
