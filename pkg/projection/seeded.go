package projection

import "math"

// SeededPCA projects onto two pseudo-random unit directions derived from the
// data itself. The seed is the sum of every mean-centered value, so refitting
// identical data reproduces the same basis.
type SeededPCA struct {
	mean       []float64
	components [2][]float64
	fitted     bool
}

// Fit stores the per-dimension mean and derives the two basis vectors.
func (p *SeededPCA) Fit(vectors [][]float64) error {
	dim, err := checkDimensions(vectors)
	if err != nil {
		return err
	}

	p.mean = columnMean(vectors, dim)

	var seed float64
	for _, v := range vectors {
		for j, x := range v {
			seed += x - p.mean[j]
		}
	}

	for i := range p.components {
		comp := make([]float64, dim)
		var norm float64
		for j := range comp {
			r := math.Sin(seed+float64(i*1000)+float64(j*100)) * 10000
			// math.Mod keeps the sign of r, matching the fractional part used by the demo
			comp[j] = math.Mod(r, 1) - 0.5
			norm += comp[j] * comp[j]
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for j := range comp {
				comp[j] /= norm
			}
		}
		p.components[i] = comp
	}

	p.fitted = true
	return nil
}

// Transform centers each vector by the fitted mean and projects it onto the
// two components. It returns nil before Fit.
func (p *SeededPCA) Transform(vectors [][]float64) [][2]float64 {
	if !p.fitted {
		return nil
	}
	return project(vectors, p.mean, p.components)
}

// Components returns copies of the fitted basis vectors.
func (p *SeededPCA) Components() [2][]float64 {
	var out [2][]float64
	for i, c := range p.components {
		out[i] = append([]float64(nil), c...)
	}
	return out
}
