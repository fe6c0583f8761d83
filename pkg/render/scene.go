// Package render turns embeddings and layout frames into drawable scenes.
// Scenes are plain data so the frontend can draw them itself; WriteSVG and
// WriteGraphSVG produce a static rendition for clients without a canvas.
package render

import "github.com/lucasb-eyer/go-colorful"

const (
	DefaultPaneSize = 400.0
	DefaultPadding  = 50.0
	// LinkThreshold is the similarity above which two labels are connected.
	LinkThreshold = 0.5
	// StrongThreshold switches a connection to the strong style.
	StrongThreshold = 0.7

	minDotSize = 4.0
	maxDotSize = 12.0
)

// Rect is an axis aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Dot is one projected label.
type Dot struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// Link connects two dots whose embeddings are similar. Alpha is on the 0..255 scale.
type Link struct {
	From       int     `json:"from"`
	To         int     `json:"to"`
	Similarity float64 `json:"similarity"`
	Strong     bool    `json:"strong"`
	Color      string  `json:"color"`
	Alpha      float64 `json:"alpha"`
	Width      float64 `json:"width"`
}

// Pane is the projection of one model's embeddings. Dot coordinates are
// absolute within the scene.
type Pane struct {
	Model  string `json:"model"`
	Bounds Rect   `json:"bounds"`
	Dots   []Dot  `json:"dots"`
	Links  []Link `json:"links"`
}

// Scene is a set of panes on a dark canvas.
type Scene struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background string  `json:"background"`
	Panes      []Pane  `json:"panes"`
}

var (
	background  = colorful.Color{R: 26.0 / 255, G: 26.0 / 255, B: 26.0 / 255}
	strongColor = colorful.Color{R: 1, G: 1, B: 1}
	weakColor   = colorful.Color{R: 150.0 / 255, G: 150.0 / 255, B: 150.0 / 255}
)

// LabelColor is the muted golden-angle color of the i-th label.
func LabelColor(i int) colorful.Color {
	hue := float64(i) * 137.508
	for hue >= 360 {
		hue -= 360
	}
	return colorful.Hsl(hue, 0.2, 0.7)
}

// Comparison places panes side by side, left to right, and returns the scene
// that contains them.
func Comparison(panes ...Pane) Scene {
	s := Scene{Background: background.Hex(), Panes: make([]Pane, 0, len(panes))}
	var x float64
	for _, p := range panes {
		moved := p.moveTo(x, 0)
		s.Panes = append(s.Panes, moved)
		x += p.Bounds.W
		s.Height = max(s.Height, p.Bounds.H)
	}
	s.Width = x
	return s
}

func (p Pane) moveTo(x, y float64) Pane {
	dx, dy := x-p.Bounds.X, y-p.Bounds.Y
	out := p
	out.Bounds.X, out.Bounds.Y = x, y
	out.Dots = make([]Dot, len(p.Dots))
	for i, d := range p.Dots {
		d.X += dx
		d.Y += dy
		out.Dots[i] = d
	}
	out.Links = append([]Link(nil), p.Links...)
	return out
}
