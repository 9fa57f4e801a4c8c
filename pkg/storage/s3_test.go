package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// fakeS3 is an in-memory S3Client.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

type s3NotFound struct{ code string }

func (e *s3NotFound) Error() string                 { return e.code }
func (e *s3NotFound) ErrorCode() string             { return e.code }
func (e *s3NotFound) ErrorMessage() string          { return e.code }
func (e *s3NotFound) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &s3NotFound{code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.objects[*in.Key] = data
	f.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	delete(f.objects, *in.Key)
	f.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &s3NotFound{code: "NotFound"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3PutGetWithPrefix(t *testing.T) {
	fake := newFakeS3()
	s := NewS3(fake, "bucket", "voiceprints")
	ctx := context.Background()

	if err := s.Put(ctx, "audio/alice.wav", []byte("pcm")); err != nil {
		t.Fatal(err)
	}
	if _, ok := fake.objects["voiceprints/audio/alice.wav"]; !ok {
		t.Error("object not stored under prefix")
	}

	data, err := s.Get(ctx, "audio/alice.wav")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pcm" {
		t.Errorf("Get = %q", data)
	}
}

func TestS3GetMissingMapsToNotExist(t *testing.T) {
	s := NewS3(newFakeS3(), "bucket", "")
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestS3ExistsAndDelete(t *testing.T) {
	s := NewS3(newFakeS3(), "bucket", "p")
	ctx := context.Background()

	if ok, _ := s.Exists(ctx, "a"); ok {
		t.Error("Exists before put")
	}
	_ = s.Put(ctx, "a", []byte("x"))
	if ok, _ := s.Exists(ctx, "a"); !ok {
		t.Error("Exists after put")
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	// Deleting a missing object is fine.
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
}
