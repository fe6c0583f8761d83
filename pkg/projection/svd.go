package projection

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SVDPCA computes the two leading principal components of the centered data
// through a thin singular value decomposition.
type SVDPCA struct {
	mean       []float64
	components [2][]float64
	fitted     bool
}

// Fit centers the data and extracts the right singular vectors belonging to
// the two largest singular values. Missing components (fewer than two
// samples or dimensions) are left as zero vectors.
func (p *SVDPCA) Fit(vectors [][]float64) error {
	dim, err := checkDimensions(vectors)
	if err != nil {
		return err
	}

	p.mean = columnMean(vectors, dim)

	n := len(vectors)
	data := make([]float64, 0, n*dim)
	for _, v := range vectors {
		for j, x := range v {
			data = append(data, x-p.mean[j])
		}
	}
	centered := mat.NewDense(n, dim, data)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return errors.New("svd factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	_, cols := v.Dims()

	for c := range p.components {
		comp := make([]float64, dim)
		if c < cols {
			for j := range comp {
				comp[j] = v.At(j, c)
			}
			orient(comp)
		}
		p.components[c] = comp
	}

	p.fitted = true
	return nil
}

// Transform projects vectors onto the fitted components, or returns nil before Fit.
func (p *SVDPCA) Transform(vectors [][]float64) [][2]float64 {
	if !p.fitted {
		return nil
	}
	return project(vectors, p.mean, p.components)
}

// orient flips comp so its largest-magnitude coordinate is positive. Singular
// vectors are only defined up to sign and this keeps plots from mirroring
// between runs.
func orient(comp []float64) {
	idx := 0
	for j, x := range comp {
		if math.Abs(x) > math.Abs(comp[idx]) {
			idx = j
		}
	}
	if comp[idx] < 0 {
		for j := range comp {
			comp[j] = -comp[j]
		}
	}
}
