// Package vecstore persists one voiceprint per identity and ranks
// identities by cosine distance.
//
// The [Store] interface is the contract the verification pipeline depends
// on: upsert replaces wholesale (no versioning), point lookups report
// absence with ErrNotFound, and deletes are idempotent. The indexing
// metric is cosine space, the same metric the verification engine scores
// with, so nearest-neighbor ranking and the accept/reject threshold stay
// commensurable.
//
// [Badger] is the durable on-disk backend; [Memory] backs tests and
// small deployments.
package vecstore

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrNotFound is returned by Get when an identity has no stored
// voiceprint. Absence is a normal outcome, not a failure.
var ErrNotFound = errors.New("vecstore: not found")

// Record is the stored form of a voiceprint: the vector plus the identity
// label annotation it is keyed by.
type Record struct {
	// Identity is the identity label, duplicated into the record so an
	// export or index rebuild can recover it without parsing keys.
	Identity string `msgpack:"identity"`

	// Vector is the voiceprint embedding.
	Vector []float32 `msgpack:"vector"`

	// UpdatedAt is when the voiceprint was last replaced.
	UpdatedAt time.Time `msgpack:"updated_at"`
}

// Match is a single result from a similarity search.
type Match struct {
	// Identity is the matched identity.
	Identity string

	// Distance is the cosine distance to the query (0 = identical
	// direction, 2 = opposite).
	Distance float32
}

// Store holds at most one active voiceprint per identity.
//
// All implementations must be safe for concurrent use, and operations
// must be atomic per identity: a concurrent Get observes either the value
// before or after an Upsert, never a partial write.
type Store interface {
	// Upsert replaces any existing voiceprint for the identity.
	// Idempotent: repeating the same upsert leaves the store unchanged.
	Upsert(ctx context.Context, identity string, vector []float32) error

	// Get returns the stored voiceprint, or ErrNotFound.
	Get(ctx context.Context, identity string) ([]float32, error)

	// Delete removes the identity's voiceprint; a no-op if absent.
	Delete(ctx context.Context, identity string) error

	// Search returns the topK identities nearest the query vector,
	// closest first.
	Search(ctx context.Context, query []float32, topK int) ([]Match, error)

	// Len returns the number of enrolled identities.
	Len(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// CosineDistance is the store's ranking metric: 1 minus cosine
// similarity, in [0, 2]. Mismatched dimensions and zero-norm vectors rank
// at maximum distance. Kept in agreement with the verification engine's
// scoring function.
func CosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 2
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Same boundary snap as the verification scorer, so a vector is at
	// distance exactly 0 from itself.
	const eps = 1e-12
	if sim > 1-eps {
		sim = 1
	}
	if sim < -1+eps {
		sim = -1
	}
	return float32(1 - sim)
}
