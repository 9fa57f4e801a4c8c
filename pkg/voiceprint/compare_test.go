package voiceprint

import (
	"math"
	"testing"
)

func TestCosineSimilarityKnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical direction", []float32{1, 0}, []float32{2, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched dims", []float32{1, 0}, []float32{1}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, -1},
		{"empty", nil, nil, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompareSelfSimilarity(t *testing.T) {
	v := []float32{0.3, -1.7, 2.2, 0.01, 5.5}
	for _, threshold := range []float64{0, 0.5, 0.75, 1.0} {
		d := Compare(v, v, threshold)
		if d.Score != 1.0 {
			t.Errorf("self score = %v, want exactly 1.0", d.Score)
		}
		if !d.Match {
			t.Errorf("self compare at threshold %v: Match = false", threshold)
		}
		if d.Threshold != threshold {
			t.Errorf("Threshold = %v, want %v", d.Threshold, threshold)
		}
	}
}

func TestCompareThresholdMonotonicity(t *testing.T) {
	ref := []float32{1, 0.2, 0.1}
	cand := []float32{0.9, 0.3, 0.15}

	prev := true
	for _, threshold := range []float64{-1, 0, 0.5, 0.9, 0.99, 1.0} {
		d := Compare(ref, cand, threshold)
		// Raising the threshold can only flip a match to a non-match.
		if d.Match && !prev {
			t.Fatalf("match reappeared at threshold %v", threshold)
		}
		prev = d.Match
	}
}

func TestCompareRange(t *testing.T) {
	d := Compare([]float32{1, 2, 3}, []float32{-3, 1, -2}, 0.75)
	if d.Score < -1 || d.Score > 1 {
		t.Errorf("score %v outside [-1, 1]", d.Score)
	}
	if d.Match {
		t.Error("dissimilar vectors matched at 0.75")
	}
}
