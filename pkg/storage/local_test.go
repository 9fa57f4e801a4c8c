package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalPutGetRoundTrip(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "audio/alice.wav", []byte("waveform")); err != nil {
		t.Fatal(err)
	}
	data, err := s.Get(ctx, "audio/alice.wav")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "waveform" {
		t.Errorf("Get = %q", data)
	}

	ok, err := s.Exists(ctx, "audio/alice.wav")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
}

func TestLocalPutOverwrites(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_ = s.Put(ctx, "a", []byte("one"))
	if err := s.Put(ctx, "a", []byte("two")); err != nil {
		t.Fatal(err)
	}
	data, _ := s.Get(ctx, "a")
	if string(data) != "two" {
		t.Errorf("Get = %q, want overwrite", data)
	}

	// No temp files should linger after the rename.
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "a" {
			t.Errorf("leftover file %q", e.Name())
		}
	}
}

func TestLocalGetMissing(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Get(context.Background(), "nope")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestLocalDeleteIdempotent(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_ = s.Put(ctx, "x", []byte("data"))
	if err := s.Delete(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "x"); ok {
		t.Error("artifact still exists after delete")
	}
}

func TestLocalCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := NewLocal(root); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatal(err)
	}
}
