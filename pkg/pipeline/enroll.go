package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vospect/vospect/pkg/audio/normalize"
	"github.com/vospect/vospect/pkg/metadata"
)

// EnrollRequest is an enrollment upload.
type EnrollRequest struct {
	// Identity names the speaker being enrolled.
	Identity string

	// Audio is the raw upload body.
	Audio io.Reader

	// Filename is the declared upload filename; its extension is
	// validated against the supported container formats.
	Filename string

	// ContentType is the declared MIME type; may be empty.
	ContentType string
}

// EnrollResult reports a successful enrollment.
type EnrollResult struct {
	Identity string `json:"identity"`
	Status   string `json:"status"`
}

// Enroll registers a new identity from an audio upload.
//
// Steps: validate format, check the identity is not already enrolled
// (before any file I/O), persist the raw upload, check size, normalize,
// extract, store the voiceprint, retain the canonical recording, create
// the metadata record. Transient files are removed on every exit path.
func (p *Pipeline) Enroll(ctx context.Context, req EnrollRequest) (EnrollResult, error) {
	if _, err := normalize.ValidateFormat(req.Filename, req.ContentType); err != nil {
		return EnrollResult{}, err
	}

	exists, err := p.meta.RecordExists(ctx, req.Identity)
	if err != nil {
		return EnrollResult{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if exists {
		return EnrollResult{}, fmt.Errorf("%w: %q", ErrAlreadyEnrolled, req.Identity)
	}

	work, err := p.newWorkdir("enroll")
	if err != nil {
		return EnrollResult{}, err
	}
	defer work.cleanup()

	rawPath, err := work.saveUpload("upload"+extOf(req.Filename), req.Audio)
	if err != nil {
		return EnrollResult{}, err
	}
	if err := normalize.ValidateSize(rawPath); err != nil {
		return EnrollResult{}, err
	}

	wavPath := work.path("canonical.wav")
	if err := p.norm.Normalize(ctx, rawPath, wavPath); err != nil {
		return EnrollResult{}, err
	}

	vector, err := p.engine.Extract(ctx, wavPath)
	if err != nil {
		return EnrollResult{}, err
	}

	// The canonical waveform becomes the identity's audio of record.
	canonical, err := os.ReadFile(wavPath)
	if err != nil {
		return EnrollResult{}, fmt.Errorf("pipeline: read canonical waveform: %w", err)
	}
	audioPath := recordingPath(req.Identity)
	if err := p.blobs.Put(ctx, audioPath, canonical); err != nil {
		return EnrollResult{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := p.vectors.Upsert(ctx, req.Identity, vector); err != nil {
		return EnrollResult{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	rec := metadata.Record{
		Status:    metadata.StatusActive,
		AudioPath: audioPath,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.meta.RecordCreate(ctx, req.Identity, rec); err != nil {
		return EnrollResult{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	p.log.Info("identity enrolled",
		"identity", req.Identity,
		"dimension", len(vector))
	return EnrollResult{Identity: req.Identity, Status: StatusEnrolled}, nil
}
