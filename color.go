package tilefield

import "image/color"

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Tile colors. A bad-data tile renders red, a good tile white.
var (
	White = RGBA{R: 1, G: 1, B: 1, A: 1}
	Red   = RGBA{R: 1, G: 0, B: 0, A: 1}
)

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// MeanRGBA returns the component-wise arithmetic mean of the given colors.
// Merged LOD tiles use this, so every merged color is a convex combination
// of its constituents and stays in [0, 1] per channel.
// The mean of an empty slice is the zero color.
func MeanRGBA(colors []RGBA) RGBA {
	if len(colors) == 0 {
		return RGBA{}
	}
	var sum RGBA
	for _, c := range colors {
		sum.R += c.R
		sum.G += c.G
		sum.B += c.B
		sum.A += c.A
	}
	n := float64(len(colors))
	return RGBA{R: sum.R / n, G: sum.G / n, B: sum.B / n, A: sum.A / n}
}
