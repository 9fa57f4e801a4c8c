package metadata

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	b, err := NewBadger("", true, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"badger": b,
	}
}

func TestRecordLifecycle(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ok, err := s.RecordExists(ctx, "alice")
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Fatal("record exists before create")
			}

			rec := Record{
				Status:    StatusActive,
				AudioPath: "audio/alice.wav",
				CreatedAt: time.Now().UTC().Truncate(time.Second),
			}
			if err := s.RecordCreate(ctx, "alice", rec); err != nil {
				t.Fatal(err)
			}

			ok, err = s.RecordExists(ctx, "alice")
			if err != nil || !ok {
				t.Fatalf("RecordExists after create = %v, %v", ok, err)
			}

			got, err := s.RecordGet(ctx, "alice")
			if err != nil {
				t.Fatal(err)
			}
			if got.Status != StatusActive || got.AudioPath != "audio/alice.wav" {
				t.Errorf("RecordGet = %+v", got)
			}
			if !got.CreatedAt.Equal(rec.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
			}

			if err := s.RecordDelete(ctx, "alice"); err != nil {
				t.Fatal(err)
			}
			if _, err := s.RecordGet(ctx, "alice"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("RecordGet after delete = %v, want ErrNotFound", err)
			}
			// Deleting again is a no-op.
			if err := s.RecordDelete(ctx, "alice"); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestRecordGetMissing(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.RecordGet(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}
