package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Remove deletes an identity entirely: its voiceprint, its metadata
// record, and the retained enrollment recording. Idempotent; removing
// an unknown identity succeeds.
//
// The recording is deleted last so a partial removal can never leave an
// identity whose audio of record is gone but whose voiceprint still
// verifies.
func (p *Pipeline) Remove(ctx context.Context, identity string) error {
	if err := p.vectors.Delete(ctx, identity); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := p.meta.RecordDelete(ctx, identity); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := p.blobs.Delete(ctx, recordingPath(identity)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	p.log.Info("identity removed", "identity", identity)
	return nil
}

// extOf returns the lowercased extension of a declared filename.
func extOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
