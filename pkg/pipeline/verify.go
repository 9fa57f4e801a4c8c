package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vospect/vospect/pkg/audio/normalize"
	"github.com/vospect/vospect/pkg/vecstore"
	"github.com/vospect/vospect/pkg/voiceprint"
)

// VerifyRequest is a verification attempt against an enrolled identity.
type VerifyRequest struct {
	// Identity is the claimed identity.
	Identity string

	// Audio is the raw upload body.
	Audio io.Reader

	// Filename is the declared upload filename.
	Filename string

	// ContentType is the declared MIME type; may be empty.
	ContentType string

	// Threshold overrides the pipeline's decision boundary when
	// positive. Whether callers should be allowed to set it is a
	// policy question for the transport layer; the server API keeps
	// it private.
	Threshold float64
}

// Verify compares an audio sample against the identity's stored
// voiceprint.
//
// A score below the threshold is a normal outcome: the returned Decision
// has Match false and error is nil. Every file created for the attempt
// is removed before Verify returns, on success and failure alike.
func (p *Pipeline) Verify(ctx context.Context, req VerifyRequest) (voiceprint.Decision, error) {
	if _, err := normalize.ValidateFormat(req.Filename, req.ContentType); err != nil {
		return voiceprint.Decision{}, err
	}

	exists, err := p.meta.RecordExists(ctx, req.Identity)
	if err != nil {
		return voiceprint.Decision{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !exists {
		return voiceprint.Decision{}, fmt.Errorf("%w: %q", ErrIdentityNotEnrolled, req.Identity)
	}

	work, err := p.newWorkdir("verify")
	if err != nil {
		return voiceprint.Decision{}, err
	}
	defer work.cleanup()

	rawPath, err := work.saveUpload("upload"+extOf(req.Filename), req.Audio)
	if err != nil {
		return voiceprint.Decision{}, err
	}
	if err := normalize.ValidateSize(rawPath); err != nil {
		return voiceprint.Decision{}, err
	}

	wavPath := work.path("canonical.wav")
	if err := p.norm.Normalize(ctx, rawPath, wavPath); err != nil {
		return voiceprint.Decision{}, err
	}

	reference, err := p.vectors.Get(ctx, req.Identity)
	if err != nil {
		if errors.Is(err, vecstore.ErrNotFound) {
			// Metadata exists but the voiceprint is gone. Treat as not
			// enrolled; the caller must re-enroll.
			return voiceprint.Decision{}, fmt.Errorf("%w: %q has no stored voiceprint", ErrIdentityNotEnrolled, req.Identity)
		}
		return voiceprint.Decision{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	candidate, err := p.engine.Extract(ctx, wavPath)
	if err != nil {
		return voiceprint.Decision{}, err
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = p.threshold
	}
	decision := voiceprint.Compare(reference, candidate, threshold)

	p.log.Info("verification decided",
		"identity", req.Identity,
		"match", decision.Match,
		"score", decision.Score,
		"threshold", decision.Threshold)
	return decision, nil
}
