// Package pipeline sequences the voice identity flows: enrollment
// (normalize, extract, store) and verification (normalize, extract,
// compare).
//
// Each request runs as one strictly sequential pipeline. Transient files
// for a request live in a private work directory that is removed on
// every exit path, so a failure at any step leaves no partial artifacts
// behind. The only retained file is the canonical enrollment recording,
// which moves into the artifact store once enrollment succeeds.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vospect/vospect/pkg/audio/normalize"
	"github.com/vospect/vospect/pkg/metadata"
	"github.com/vospect/vospect/pkg/storage"
	"github.com/vospect/vospect/pkg/vecstore"
	"github.com/vospect/vospect/pkg/voiceprint"
)

// StatusEnrolled is the status reported after successful enrollment.
const StatusEnrolled = "enrolled"

// Pipeline orchestrates enrollment and verification.
type Pipeline struct {
	norm      *normalize.Normalizer
	engine    *voiceprint.Engine
	vectors   vecstore.Store
	meta      metadata.Store
	blobs     storage.BlobStore
	threshold float64
	workRoot  string
	log       *slog.Logger
}

// Options configures a Pipeline.
type Options struct {
	// Threshold is the default verification decision boundary.
	// Zero means voiceprint.DefaultThreshold.
	Threshold float64

	// WorkDir is where per-request transient files live.
	// Empty means the system temp directory.
	WorkDir string

	// Log receives pipeline events. Nil means slog.Default().
	Log *slog.Logger
}

// New assembles a Pipeline from its collaborators.
func New(norm *normalize.Normalizer, engine *voiceprint.Engine,
	vectors vecstore.Store, meta metadata.Store, blobs storage.BlobStore,
	opts Options) *Pipeline {

	if opts.Threshold <= 0 {
		opts.Threshold = voiceprint.DefaultThreshold
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Pipeline{
		norm:      norm,
		engine:    engine,
		vectors:   vectors,
		meta:      meta,
		blobs:     blobs,
		threshold: opts.Threshold,
		workRoot:  opts.WorkDir,
		log:       opts.Log,
	}
}

// Threshold returns the pipeline's default decision boundary.
func (p *Pipeline) Threshold() float64 {
	return p.threshold
}

// recordingPath is the artifact store path of an identity's retained
// enrollment recording.
func recordingPath(identity string) string {
	return "audio/" + identity + ".wav"
}

// workdir is the scoped home of one request's transient files. Its
// removal is tied to pipeline termination, not to individual step
// success, which is what guarantees the cleanup invariant.
type workdir struct {
	dir string
	log *slog.Logger
}

func (p *Pipeline) newWorkdir(kind string) (*workdir, error) {
	dir := filepath.Join(p.workRoot, kind+"-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("pipeline: create work dir: %w", err)
	}
	return &workdir{dir: dir, log: p.log}, nil
}

func (w *workdir) path(name string) string {
	return filepath.Join(w.dir, name)
}

// cleanup removes the whole work directory. Failures are logged, never
// propagated: they must not mask the error that ended the pipeline.
func (w *workdir) cleanup() {
	if err := os.RemoveAll(w.dir); err != nil {
		w.log.Warn("failed to remove work dir", "dir", w.dir, "error", err)
	}
}

// saveUpload streams the upload into the work directory.
func (w *workdir) saveUpload(name string, audio io.Reader) (string, error) {
	path := w.path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("pipeline: save upload: %w", err)
	}
	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		return "", fmt.Errorf("pipeline: save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pipeline: save upload: %w", err)
	}
	return path, nil
}
