package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "identical", a: []float64{0.3, -1.2, 4}, b: []float64{0.3, -1.2, 4}, want: 1},
		{name: "opposite", a: []float64{1, 2}, b: []float64{-1, -2}, want: -1},
		{name: "scaled", a: []float64{1, 1}, b: []float64{5, 5}, want: 1},
		{name: "zero left", a: []float64{0, 0}, b: []float64{1, 2}, want: 0},
		{name: "zero right", a: []float64{1, 2}, b: []float64{0, 0}, want: 0},
		{name: "mismatched length", a: []float64{1, 2, 3}, b: []float64{1, 2}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.IsNaN(got) {
				t.Fatalf("Cosine() returned NaN")
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSymmetric(t *testing.T) {
	vectors := [][]float64{
		{1, 2, 3},
		{-0.5, 0.25, 8},
		{0, 0, 0},
		{3, -3, 1e-6},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			if Cosine(a, b) != Cosine(b, a) {
				t.Fatalf("Cosine(%v, %v) != Cosine(%v, %v)", a, b, b, a)
			}
		}
	}
}

func TestCosineStrict_Mismatch(t *testing.T) {
	_, err := CosineStrict([]float64{1}, []float64{1, 2})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRank(t *testing.T) {
	query := []float64{1, 0}
	docs := [][]float64{
		{0.5, 0.5},
		{0, 1},
		{1, 0.1},
	}
	labels := []string{"inflation worries", "sports scores", "market fears"}

	got := Rank(query, docs, labels)
	if len(got) != len(docs) {
		t.Fatalf("expected %d matches, got %d", len(docs), len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Similarity < got[i].Similarity {
			t.Fatalf("matches not sorted descending: %+v", got)
		}
	}
	for _, m := range got {
		if labels[m.Index] != m.Document {
			t.Fatalf("index %d does not reference %q", m.Index, m.Document)
		}
	}
	if got[0].Document != "market fears" {
		t.Fatalf("expected market fears first, got %q", got[0].Document)
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	got := Rank([]float64{1, 0}, [][]float64{{1, 0}, {2, 0}, {3, 0}}, []string{"a", "b", "c"})
	for i, m := range got {
		if m.Index != i {
			t.Fatalf("tie order changed: %+v", got)
		}
	}
}

func TestTopK(t *testing.T) {
	matches := []Match{{Index: 0}, {Index: 1}, {Index: 2}}
	if got := TopK(matches, 2); len(got) != 2 {
		t.Fatalf("TopK(2) returned %d", len(got))
	}
	if got := TopK(matches, 0); len(got) != 3 {
		t.Fatalf("TopK(0) returned %d", len(got))
	}
	if got := TopK(matches, 10); len(got) != 3 {
		t.Fatalf("TopK(10) returned %d", len(got))
	}
}
