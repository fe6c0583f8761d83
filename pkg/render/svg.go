package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/cozyai/kitchenette/backend/pkg/layout"
)

func px(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

// WriteSVG draws an embedding comparison scene.
func WriteSVG(w io.Writer, scene Scene) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(px(scene.Width), px(scene.Height))
	canvas.Rect(0, 0, px(scene.Width), px(scene.Height), "fill:"+scene.Background)

	for _, pane := range scene.Panes {
		b := pane.Bounds
		canvas.Gid(pane.Model)

		// axes through the pane center
		axis := "stroke:#ffffff;stroke-opacity:0.12"
		canvas.Line(px(b.X+DefaultPadding), px(b.Y+b.H/2), px(b.X+b.W-DefaultPadding), px(b.Y+b.H/2), axis)
		canvas.Line(px(b.X+b.W/2), px(b.Y+DefaultPadding), px(b.X+b.W/2), px(b.Y+b.H-DefaultPadding), axis)

		for _, l := range pane.Links {
			if l.From >= len(pane.Dots) || l.To >= len(pane.Dots) {
				continue
			}
			a, z := pane.Dots[l.From], pane.Dots[l.To]
			canvas.Line(px(a.X), px(a.Y), px(z.X), px(z.Y),
				fmt.Sprintf("stroke:%s;stroke-opacity:%.3f;stroke-width:%.2f", l.Color, l.Alpha/255, l.Width))
		}

		for _, d := range pane.Dots {
			canvas.Circle(px(d.X), px(d.Y), max(1, px(d.Size/2)), "fill:"+d.Color)
			canvas.Text(px(d.X), px(d.Y-15), d.Label,
				"fill:#ffffff;fill-opacity:0.78;font-size:12px;font-family:sans-serif;text-anchor:middle")
		}

		canvas.Text(px(b.X+10), px(b.Y+b.H-20), "Model: "+pane.Model,
			"fill:#ffffff;font-size:12px;font-family:sans-serif")
		canvas.Gend()
	}

	canvas.End()
	return ew.err
}

// WriteGraphSVG draws a layout frame centered on the canvas, with a legend
// in the lower left corner.
func WriteGraphSVG(w io.Writer, f layout.Frame) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	width, height := px(f.Width), px(f.Height)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#ffffff")

	colors := make(map[string]string, len(f.Types))
	for _, t := range f.Types {
		colors[t.Name] = t.Color
	}

	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", width/2, height/2))
	for _, e := range f.Edges {
		style := "stroke:#646464;stroke-opacity:0.6;stroke-width:2"
		if e.Hub {
			style = "stroke:#3c3c3c;stroke-opacity:0.5;stroke-width:1;stroke-dasharray:5,5"
		}
		canvas.Line(px(e.X1), px(e.Y1), px(e.X2), px(e.Y2), style)
	}

	for _, n := range f.Nodes {
		if !n.Visible {
			continue
		}
		fill := colors[n.Type]
		if n.Hub {
			if c, err := colorful.Hex(fill); err == nil {
				fill = layout.HubColor(c).Hex()
			}
			canvas.Circle(px(n.X), px(n.Y), px((n.Mass+8)/2), "fill:"+fill+";stroke:#000000;stroke-width:3")
			canvas.Text(px(n.X), px(n.Y+5), n.Type,
				"fill:#000000;font-size:14px;font-weight:bold;font-family:sans-serif;text-anchor:middle")
			continue
		}
		style := "fill:" + fill + ";stroke:#000000;stroke-width:1"
		if n.Locked {
			style = "fill:" + fill + ";stroke:#000000;stroke-width:2;stroke-dasharray:2,2"
		}
		canvas.Circle(px(n.X), px(n.Y), px(n.Mass/2), style)
		canvas.Text(px(n.X), px(n.Y+4), n.ID,
			"fill:#000000;font-size:12px;font-family:sans-serif;text-anchor:middle")
	}
	canvas.Gend()

	legendX, y := 20, height-140
	canvas.Rect(legendX-10, y-10, 170, 130, "fill:#000000;fill-opacity:0.12")
	label := "Hide All"
	if !f.AllVisible {
		label = "Show All"
	}
	canvas.Text(legendX, y+12, label, "fill:#000000;font-size:12px;font-family:sans-serif")
	y += 25
	for _, t := range f.Types {
		canvas.Circle(legendX+10, y+10, 7, "fill:"+t.Color)
		canvas.Text(legendX+25, y+14, t.Name, "fill:#000000;font-size:11px;font-family:sans-serif")
		if !t.Visible {
			canvas.Line(legendX+3, y+10, legendX+17, y+10, "stroke:#ff0000;stroke-width:2")
		}
		y += 20
	}

	canvas.End()
	return ew.err
}

// errWriter remembers the first write error so drawing code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
