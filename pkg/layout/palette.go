package layout

import "github.com/lucasb-eyer/go-colorful"

// palette holds the muted category colors, assigned to types in order of
// first appearance and reused cyclically.
var palette = []colorful.Color{
	rgb(180, 80, 80),
	rgb(80, 160, 80),
	rgb(80, 80, 180),
	rgb(160, 140, 80),
	rgb(140, 100, 180),
	rgb(180, 120, 100),
	rgb(100, 180, 140),
	rgb(180, 100, 140),
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// TypeColor returns the palette color for the i-th type.
func TypeColor(i int) colorful.Color {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// HubColor brightens a type color by 30 per channel for hub nodes.
func HubColor(c colorful.Color) colorful.Color {
	const step = 30.0 / 255
	return colorful.Color{R: min(c.R+step, 1), G: min(c.G+step, 1), B: min(c.B+step, 1)}
}
