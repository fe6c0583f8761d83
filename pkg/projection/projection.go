// Package projection reduces embedding vectors to two dimensions for plotting.
//
// Two reducers are available. SeededPCA reproduces the demo's deterministic
// basis: it is not a statistically meaningful PCA, but identical input always
// lands on identical coordinates. SVDPCA computes real principal components
// and is used when a caller explicitly asks for it.
package projection

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when Fit is called without vectors.
	ErrEmptyInput = errors.New("projection needs at least one vector")
	// ErrDimensionMismatch is returned when input vectors differ in length.
	ErrDimensionMismatch = errors.New("projection input vectors differ in length")
	// ErrNotFitted is returned by Project when the reducer has no basis yet.
	ErrNotFitted = errors.New("projection reducer is not fitted")
)

// LabeledPoint is one embedded text unit used as reducer input.
type LabeledPoint struct {
	Label  string    `json:"label"`
	Vector []float64 `json:"vector"`
}

// ProjectedPoint is a LabeledPoint after reduction to 2D.
type ProjectedPoint struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Reducer fits a 2D basis to a set of vectors and projects vectors onto it.
type Reducer interface {
	Fit(vectors [][]float64) error
	// Transform returns nil when the reducer has not been fitted.
	Transform(vectors [][]float64) [][2]float64
}

// Method names a reducer implementation.
type Method string

const (
	MethodSeeded Method = "seeded"
	MethodSVD    Method = "svd"
)

// NewReducer returns the reducer for the given method. An empty method
// selects the seeded reducer.
func NewReducer(method Method) (Reducer, error) {
	switch method {
	case "", MethodSeeded:
		return &SeededPCA{}, nil
	case MethodSVD:
		return &SVDPCA{}, nil
	default:
		return nil, fmt.Errorf("unknown projection method %q", method)
	}
}

// Project fits r to the vectors of points and returns their projections.
func Project(r Reducer, points []LabeledPoint) ([]ProjectedPoint, error) {
	vectors := make([][]float64, len(points))
	for i, p := range points {
		vectors[i] = p.Vector
	}
	if err := r.Fit(vectors); err != nil {
		return nil, err
	}

	coords := r.Transform(vectors)
	if coords == nil {
		return nil, ErrNotFitted
	}

	out := make([]ProjectedPoint, len(points))
	for i, c := range coords {
		out[i] = ProjectedPoint{Label: points[i].Label, X: c[0], Y: c[1]}
	}
	return out, nil
}

func checkDimensions(vectors [][]float64) (int, error) {
	if len(vectors) == 0 {
		return 0, ErrEmptyInput
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, ErrEmptyInput
	}
	for _, v := range vectors {
		if len(v) != dim {
			return 0, ErrDimensionMismatch
		}
	}
	return dim, nil
}

func columnMean(vectors [][]float64, dim int) []float64 {
	mean := make([]float64, dim)
	for _, v := range vectors {
		for j, x := range v {
			mean[j] += x
		}
	}
	n := float64(len(vectors))
	for j := range mean {
		mean[j] /= n
	}
	return mean
}

func project(vectors [][]float64, mean []float64, components [2][]float64) [][2]float64 {
	out := make([][2]float64, len(vectors))
	for i, v := range vectors {
		for c, comp := range components {
			var sum float64
			for j := range comp {
				if j >= len(v) {
					break
				}
				sum += (v[j] - mean[j]) * comp[j]
			}
			out[i][c] = sum
		}
	}
	return out
}
