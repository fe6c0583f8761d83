package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/cozyai/kitchenette/backend/pkg/projection"
	"github.com/cozyai/kitchenette/backend/pkg/vector"
)

// ErrLabelMismatch is returned when labels and vectors differ in count.
var ErrLabelMismatch = errors.New("labels and vectors differ in count")

// PaneOptions configures EmbeddingPane.
type PaneOptions struct {
	Method  projection.Method
	Padding float64
}

// EmbeddingPane projects the vectors of one model into bounds.
//
// Points are scaled so the projected extent fills the pane minus padding.
// Dots shrink up to 40% with their distance from the projected center, and
// every pair with cosine similarity above LinkThreshold is linked.
func EmbeddingPane(model string, labels []string, vectors [][]float64, bounds Rect, opts PaneOptions) (*Pane, error) {
	if len(labels) != len(vectors) {
		return nil, ErrLabelMismatch
	}
	if opts.Padding <= 0 {
		opts.Padding = DefaultPadding
	}

	reducer, err := projection.NewReducer(opts.Method)
	if err != nil {
		return nil, err
	}
	if err := reducer.Fit(vectors); err != nil {
		return nil, fmt.Errorf("project %s: %w", model, err)
	}
	points := reducer.Transform(vectors)
	if points == nil {
		return nil, projection.ErrNotFitted
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	maxDist := math.Hypot(maxX-minX, maxY-minY) / 2

	pad := opts.Padding
	pane := &Pane{
		Model:  model,
		Bounds: bounds,
		Dots:   make([]Dot, len(points)),
		Links:  make([]Link, 0),
	}
	for i, p := range points {
		factor := 1.0
		if maxDist > 0 {
			factor = 1 - math.Hypot(p[0]-cx, p[1]-cy)/maxDist*0.4
		}
		pane.Dots[i] = Dot{
			Label: labels[i],
			X:     remap(p[0], minX, maxX, bounds.X+pad, bounds.X+bounds.W-pad),
			Y:     remap(p[1], minY, maxY, bounds.Y+pad, bounds.Y+bounds.H-pad),
			Size:  math.Max(minDotSize, maxDotSize*factor),
			Color: LabelColor(i).Hex(),
		}
	}

	for i := range vectors {
		for j := i + 1; j < len(vectors); j++ {
			sim := vector.Cosine(vectors[i], vectors[j])
			if sim <= LinkThreshold {
				continue
			}
			link := Link{From: i, To: j, Similarity: sim}
			if sim > StrongThreshold {
				link.Strong = true
				link.Color = strongColor.Hex()
				link.Alpha = sim * 80
				link.Width = sim * 1.5
			} else {
				link.Color = weakColor.Hex()
				link.Alpha = sim * 100
				link.Width = sim
			}
			pane.Links = append(pane.Links, link)
		}
	}

	return pane, nil
}

// remap maps v from [lo, hi] onto [a, b]. A degenerate source range maps to the middle.
func remap(v, lo, hi, a, b float64) float64 {
	if hi == lo {
		return (a + b) / 2
	}
	return a + (v-lo)/(hi-lo)*(b-a)
}
