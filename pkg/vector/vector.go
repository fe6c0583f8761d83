package vector

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrDimensionMismatch is returned by CosineStrict when the vectors differ in length.
var ErrDimensionMismatch = errors.New("vector dimensions do not match")

// Match is a single entry of a similarity ranking.
type Match struct {
	Document   string  `json:"document"`
	Similarity float64 `json:"similarity"`
	Index      int     `json:"index"`
}

// Cosine returns the cosine of the angle between a and b.
//
// The result lies in [-1, 1]. A zero vector on either side, an empty input or
// vectors of different length yield 0 instead of NaN so rankings and line
// weights never see invalid values.
func Cosine(a, b []float64) float64 {
	s, err := CosineStrict(a, b)
	if err != nil {
		return 0
	}
	return s
}

// CosineStrict is Cosine but reports mismatched dimensions as an error.
func CosineStrict(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	normA, normB := floats.Norm(a, 2), floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	s := floats.Dot(a, b) / (normA * normB)
	// rounding can push identical vectors slightly past 1
	return math.Max(-1, math.Min(1, s)), nil
}

// Rank scores every document vector against query and returns the matches
// sorted by similarity, highest first. Ties keep their input order.
//
// labels[i] names docs[i]; a missing label leaves Document empty.
func Rank(query []float64, docs [][]float64, labels []string) []Match {
	matches := make([]Match, 0, len(docs))
	for i, d := range docs {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		matches = append(matches, Match{
			Document:   label,
			Similarity: Cosine(query, d),
			Index:      i,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// TopK returns at most k leading matches. A non-positive k returns all of them.
func TopK(matches []Match, k int) []Match {
	if k <= 0 || k >= len(matches) {
		return matches
	}
	return matches[:k]
}

// Float64s widens a float32 vector.
func Float64s(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
