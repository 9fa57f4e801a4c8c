package voiceprint

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeExtractor is a scriptable Extractor for engine tests.
type fakeExtractor struct {
	mu       sync.Mutex
	loads    int
	loadErr  error
	vec      []float32
	delay    time.Duration
	extracts int
}

func (f *fakeExtractor) Load(ctx context.Context) error {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
	return f.loadErr
}

func (f *fakeExtractor) Extract(ctx context.Context, wavPath string) ([]float32, error) {
	f.mu.Lock()
	f.extracts++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.vec, nil
}

func (f *fakeExtractor) Dimension() int { return len(f.vec) }
func (f *fakeExtractor) Close() error   { return nil }

func TestEngineNotReadyBeforeLoad(t *testing.T) {
	e := NewEngine(&fakeExtractor{vec: []float32{1}}, EngineOptions{})

	_, err := e.Extract(context.Background(), "x.wav")
	if !errors.Is(err, ErrModelNotReady) {
		t.Fatalf("err = %v, want ErrModelNotReady", err)
	}
	if e.Ready() {
		t.Error("Ready = true before Load")
	}
}

func TestEngineLoadOnce(t *testing.T) {
	fx := &fakeExtractor{vec: []float32{1, 2}}
	e := NewEngine(fx, EngineOptions{})

	for range 3 {
		if err := e.Load(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if fx.loads != 1 {
		t.Errorf("backend loaded %d times, want 1", fx.loads)
	}
	if !e.Ready() {
		t.Error("Ready = false after Load")
	}

	vec, err := e.Extract(context.Background(), "x.wav")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 2 {
		t.Errorf("vector length = %d, want 2", len(vec))
	}
}

func TestEngineLoadErrorIsSticky(t *testing.T) {
	fx := &fakeExtractor{loadErr: errors.New("weights missing")}
	e := NewEngine(fx, EngineOptions{})

	if err := e.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if err := e.Load(context.Background()); err == nil {
		t.Fatal("load error should be sticky")
	}
	if fx.loads != 1 {
		t.Errorf("backend loaded %d times, want 1", fx.loads)
	}
	if _, err := e.Extract(context.Background(), "x.wav"); !errors.Is(err, ErrModelNotReady) {
		t.Fatalf("err = %v, want ErrModelNotReady after failed load", err)
	}
}

func TestEngineExtractTimeout(t *testing.T) {
	fx := &fakeExtractor{vec: []float32{1}, delay: time.Second}
	e := NewEngine(fx, EngineOptions{Timeout: 10 * time.Millisecond})
	if err := e.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := e.Extract(context.Background(), "x.wav")
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
}

func TestEngineConcurrentExtract(t *testing.T) {
	fx := &fakeExtractor{vec: []float32{1, 2, 3}}
	e := NewEngine(fx, EngineOptions{})
	if err := e.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Extract(context.Background(), "x.wav"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if fx.extracts != 8 {
		t.Errorf("extracts = %d, want 8", fx.extracts)
	}
}

func TestEngineEmptyVector(t *testing.T) {
	e := NewEngine(&fakeExtractor{}, EngineOptions{})
	if err := e.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Extract(context.Background(), "x.wav"); !errors.Is(err, ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction for empty vector", err)
	}
}
