// Package voiceprint extracts and compares speaker embedding vectors.
//
// A voiceprint is a fixed-length float32 vector summarizing a speaker's
// vocal characteristics. The extraction model is an opaque capability
// behind the [Extractor] interface; any backend producing a fixed-length
// vector from canonical audio works (an inference sidecar, an embedded
// runtime, a test fake).
//
// [Engine] wraps a process-wide shared Extractor with an explicit load
// lifecycle and a bounded per-call timeout. [Compare] applies the cosine
// similarity accept/reject decision.
package voiceprint

import (
	"context"
	"errors"
)

// Extraction failures.
var (
	// ErrModelNotReady is returned when Extract is called before the
	// model has been loaded.
	ErrModelNotReady = errors.New("voiceprint: model not ready")

	// ErrExtraction is returned when the extraction backend fails or
	// exceeds its timeout.
	ErrExtraction = errors.New("voiceprint: extraction failed")
)

// Extractor computes speaker embeddings from canonical waveform files.
//
// The input must be a mono 16 kHz PCM16 WAV file as produced by the
// normalize package. The output is a flattened 1-D vector of length
// Dimension(), deterministic for a fixed waveform and model version.
//
// Implementations must be safe for concurrent use; multiple request
// pipelines may call Extract simultaneously.
type Extractor interface {
	// Extract computes the speaker embedding for the given waveform file.
	Extract(ctx context.Context, wavPath string) ([]float32, error)

	// Dimension returns the length of vectors produced by Extract.
	Dimension() int

	// Close releases resources held by the backend.
	Close() error
}

// Loader is an optional interface for Extractor backends whose model must
// be initialized before first use (weight download, session warmup).
// Engine.Load calls it once when present.
type Loader interface {
	Load(ctx context.Context) error
}
