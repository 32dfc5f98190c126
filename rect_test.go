package tilefield

import "testing"

func TestRectAround(t *testing.T) {
	r := RectAround(Pt(10, -10), 4, 6)
	want := Rect{MinX: 8, MinY: -13, MaxX: 12, MaxY: -7}
	if r != want {
		t.Errorf("RectAround = %+v, want %+v", r, want)
	}
	if r.W() != 4 || r.H() != 6 {
		t.Errorf("W/H = %v/%v, want 4/6", r.W(), r.H())
	}
	if !r.Center().Approx(Pt(10, -10), 1e-12) {
		t.Errorf("Center = %v, want (10,-10)", r.Center())
	}
}

func TestRect_Intersects(t *testing.T) {
	base := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	tests := []struct {
		name   string
		other  Rect
		expect bool
	}{
		{"overlap", Rect{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}, true},
		{"contained", Rect{MinX: 2, MinY: 2, MaxX: 8, MaxY: 8}, true},
		{"touching_edge", Rect{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}, true},
		{"touching_corner", Rect{MinX: 10, MinY: 10, MaxX: 20, MaxY: 20}, true},
		{"disjoint_x", Rect{MinX: 11, MinY: 0, MaxX: 20, MaxY: 10}, false},
		{"disjoint_y", Rect{MinX: 0, MinY: -20, MaxX: 10, MaxY: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.expect {
				t.Errorf("Intersects(%+v) = %v, want %v", tt.other, got, tt.expect)
			}
			if got := tt.other.Intersects(base); got != tt.expect {
				t.Errorf("symmetric Intersects = %v, want %v", got, tt.expect)
			}
		})
	}
}

// Half-open containment: a point on the max edge belongs to the
// higher-coordinate neighbor.
func TestRect_ContainsPoint(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{"interior", 5, 5, true},
		{"min_corner", 0, 0, true},
		{"max_x_edge", 10, 5, false},
		{"max_y_edge", 5, 10, false},
		{"outside", -1, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ContainsPoint(tt.x, tt.y); got != tt.expect {
				t.Errorf("ContainsPoint(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.expect)
			}
		})
	}
}
