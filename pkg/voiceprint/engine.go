package voiceprint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultExtractTimeout bounds a single extraction call. Extraction is
// CPU-bound and may take seconds; without a bound a wedged backend would
// block request pipelines forever.
const DefaultExtractTimeout = 30 * time.Second

// Engine is the process-wide extraction service.
//
// It wraps a shared Extractor with an explicit lifecycle: Load must be
// called once at startup before any Extract. Calls before the model is
// ready fail with ErrModelNotReady instead of crashing. Engine is safe
// for concurrent use from multiple request pipelines.
type Engine struct {
	extractor Extractor
	timeout   time.Duration
	log       *slog.Logger

	loadOnce sync.Once
	loadErr  error
	ready    atomic.Bool
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	// Timeout bounds each Extract call. Zero means DefaultExtractTimeout.
	Timeout time.Duration

	// Log receives lifecycle events. Nil means slog.Default().
	Log *slog.Logger
}

// NewEngine creates an Engine around the given extraction backend.
func NewEngine(extractor Extractor, opts EngineOptions) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultExtractTimeout
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Engine{
		extractor: extractor,
		timeout:   opts.Timeout,
		log:       opts.Log,
	}
}

// Load initializes the extraction backend. It is safe to call multiple
// times; only the first call does work, and its result is sticky.
func (e *Engine) Load(ctx context.Context) error {
	e.loadOnce.Do(func() {
		start := time.Now()
		if l, ok := e.extractor.(Loader); ok {
			if err := l.Load(ctx); err != nil {
				e.loadErr = fmt.Errorf("voiceprint: load model: %w", err)
				return
			}
		}
		e.ready.Store(true)
		e.log.Info("voiceprint model loaded",
			"dimension", e.extractor.Dimension(),
			"elapsed", time.Since(start))
	})
	return e.loadErr
}

// Ready reports whether the model has been loaded successfully.
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// Dimension returns the embedding dimensionality of the backend.
func (e *Engine) Dimension() int {
	return e.extractor.Dimension()
}

// Extract computes the speaker embedding for a canonical waveform file.
//
// Fails with ErrModelNotReady before Load has succeeded. Backend errors
// and timeouts are wrapped in ErrExtraction; the caller may retry later.
func (e *Engine) Extract(ctx context.Context, wavPath string) ([]float32, error) {
	if !e.ready.Load() {
		return nil, ErrModelNotReady
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vec, err := e.extractor.Extract(ctx, wavPath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out after %s", ErrExtraction, e.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: backend returned empty vector", ErrExtraction)
	}
	return vec, nil
}

// Close releases the extraction backend.
func (e *Engine) Close() error {
	e.ready.Store(false)
	return e.extractor.Close()
}
