// Package storage persists audio artifacts: the canonical enrollment
// recording retained per identity, and nothing else.
//
// The [BlobStore] interface abstracts the backing store so deployments
// can keep recordings on local disk ([Local]) or in an S3-compatible
// object store ([S3]). Recordings are small (seconds of 16 kHz mono
// PCM), so the interface is byte-oriented rather than streaming.
package storage

import "context"

// BlobStore stores named binary artifacts.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Put writes the artifact, replacing any existing one.
	Put(ctx context.Context, path string, data []byte) error

	// Get reads the artifact. A missing artifact returns an error
	// wrapping os.ErrNotExist.
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete removes the artifact; a no-op if absent (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the artifact is present.
	Exists(ctx context.Context, path string) (bool, error)
}
