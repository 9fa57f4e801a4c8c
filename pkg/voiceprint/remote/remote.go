// Package remote implements voiceprint.Extractor against an inference
// sidecar over HTTP.
//
// The sidecar contract is small: GET /health returns 200 when the model
// is loaded, and POST /embed accepts a multipart WAV upload and returns
// the embedding as JSON. Any model server satisfying it can back the
// pipeline without a CGO runtime in this process.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultBaseURL is the default sidecar address.
	DefaultBaseURL = "http://localhost:8501"

	// DefaultDimension matches the common speaker verification embedding
	// size (ECAPA-TDNN style models).
	DefaultDimension = 192

	// DefaultTimeout bounds a single sidecar call.
	DefaultTimeout = 60 * time.Second
)

// Config holds settings for the sidecar extractor.
type Config struct {
	// BaseURL is the sidecar base address. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout bounds each HTTP call. Defaults to 60s.
	Timeout time.Duration

	// Dimension is the embedding length the sidecar produces.
	// Defaults to DefaultDimension.
	Dimension int
}

// Extractor talks to the inference sidecar. It is safe for concurrent
// use; the sidecar is responsible for serializing or batching inference.
type Extractor struct {
	cfg    Config
	client *http.Client
}

// New creates a sidecar-backed Extractor.
func New(cfg Config) *Extractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	return &Extractor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Load verifies the sidecar is reachable and its model is loaded.
func (e *Extractor) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote: sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote: sidecar health returned %s", resp.Status)
	}
	return nil
}

// embedResponse is the sidecar's /embed payload. The embedding may arrive
// as a flat vector or wrapped in a batch dimension depending on the model
// server; both are accepted and flattened.
type embedResponse struct {
	Embedding json.RawMessage `json:"embedding"`
	Error     string          `json:"error,omitempty"`
}

// Extract uploads the waveform file and returns the flattened embedding.
func (e *Extractor) Extract(ctx context.Context, wavPath string) ([]float32, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("remote: open waveform: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("remote: buffer waveform: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/embed", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remote: sidecar returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("remote: decode response: %w", err)
	}
	if er.Error != "" {
		return nil, fmt.Errorf("remote: sidecar error: %s", er.Error)
	}
	return flatten(er.Embedding)
}

// Dimension returns the configured embedding length.
func (e *Extractor) Dimension() int {
	return e.cfg.Dimension
}

// Close releases idle connections.
func (e *Extractor) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// flatten accepts either a flat vector or a batch-of-one nested vector
// and returns the 1-D embedding.
func flatten(raw json.RawMessage) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var nested [][]float32
	if err := json.Unmarshal(raw, &nested); err == nil {
		var out []float32
		for _, row := range nested {
			out = append(out, row...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("remote: unexpected embedding shape: %s", truncate(raw, 80))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
