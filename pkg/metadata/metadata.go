// Package metadata tracks identity records alongside the vector store.
//
// This is the pipeline's view of the metadata collaborator: enough to
// gate enrollment (RecordExists) and to persist the fields a registered
// identity carries (status, audio path, creation time). The default
// implementations store records locally; a deployment with an external
// document database only needs to satisfy [Store].
package metadata

import (
	"context"
	"errors"
	"time"
)

// StatusActive marks a fully enrolled identity.
const StatusActive = "active"

// ErrNotFound is returned when no record exists for an identity.
var ErrNotFound = errors.New("metadata: not found")

// Record is the metadata kept per enrolled identity.
type Record struct {
	// Status is the enrollment status (StatusActive once enrolled).
	Status string `json:"status"`

	// AudioPath is the storage path of the retained enrollment
	// recording.
	AudioPath string `json:"audio_path"`

	// CreatedAt is when the identity was enrolled.
	CreatedAt time.Time `json:"created_at"`
}

// Store is the metadata collaborator contract.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// RecordExists reports whether the identity has a record.
	RecordExists(ctx context.Context, identity string) (bool, error)

	// RecordCreate stores the record for a newly enrolled identity,
	// replacing any previous record.
	RecordCreate(ctx context.Context, identity string, rec Record) error

	// RecordGet returns the identity's record, or ErrNotFound.
	RecordGet(ctx context.Context, identity string) (Record, error)

	// RecordDelete removes the identity's record; a no-op if absent.
	RecordDelete(ctx context.Context, identity string) error

	// Close releases resources held by the store.
	Close() error
}
