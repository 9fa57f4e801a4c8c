package pipeline

import "errors"

// Pipeline preconditions and infrastructure failures. Input validation
// and extraction errors pass through from the normalize and voiceprint
// packages; these cover what the orchestrator itself decides.
var (
	// ErrAlreadyEnrolled is returned when enrolling an identity that
	// already has an active voiceprint. Checked before any file I/O.
	ErrAlreadyEnrolled = errors.New("pipeline: identity already enrolled")

	// ErrIdentityNotEnrolled is returned when verifying an identity
	// with no active voiceprint. No extraction is performed.
	ErrIdentityNotEnrolled = errors.New("pipeline: identity not enrolled")

	// ErrStorageUnavailable wraps vector, metadata, or artifact store
	// failures. The caller's responsibility to retry later.
	ErrStorageUnavailable = errors.New("pipeline: storage unavailable")
)
