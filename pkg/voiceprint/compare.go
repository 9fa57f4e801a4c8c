package voiceprint

import "math"

// DefaultThreshold is the decision boundary used when no override is
// configured. Trades false rejects for fewer false accepts.
const DefaultThreshold = 0.75

// Decision is the outcome of comparing two voiceprints. It is an
// ephemeral result and is never persisted.
type Decision struct {
	// Match reports whether Score reached Threshold.
	Match bool `json:"match"`

	// Score is the cosine similarity of the two vectors, in [-1, 1].
	Score float64 `json:"score"`

	// Threshold is the boundary the score was judged against.
	Threshold float64 `json:"threshold"`
}

// Compare scores a candidate voiceprint against a reference and applies
// the threshold. A single deterministic pass; no retries.
func Compare(reference, candidate []float32, threshold float64) Decision {
	score := CosineSimilarity(reference, candidate)
	return Decision{
		Match:     score >= threshold,
		Score:     score,
		Threshold: threshold,
	}
}

// CosineSimilarity returns the cosine similarity of two vectors in
// [-1, 1], where 1 means identical direction. Mismatched dimensions or
// a zero-norm vector score -1 (no direction to agree on).
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return -1
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Snap away floating point drift at the boundaries so comparing a
	// vector with itself scores exactly 1.
	const eps = 1e-12
	if sim > 1-eps {
		sim = 1
	}
	if sim < -1+eps {
		sim = -1
	}
	return sim
}
