package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vospect.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Storage.Backend != "local" {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
	if cfg.Verify.Threshold != 0.75 {
		t.Errorf("threshold = %v", cfg.Verify.Threshold)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
storage:
  backend: s3
  bucket: recordings
  prefix: prod/
extractor:
  base_url: http://embedder:8501
  timeout: 15s
verify:
  threshold: 0.85
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.Bucket != "recordings" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Extractor.Timeout != 15*time.Second {
		t.Errorf("timeout = %v", cfg.Extractor.Timeout)
	}
	if cfg.Verify.Threshold != 0.85 {
		t.Errorf("threshold = %v", cfg.Verify.Threshold)
	}
	// Untouched keys keep their defaults.
	if cfg.DataDir != "data" {
		t.Errorf("data_dir = %q", cfg.DataDir)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown backend", "storage:\n  backend: ftp\n", "unknown storage backend"},
		{"s3 without bucket", "storage:\n  backend: s3\n", "storage.bucket is required"},
		{"threshold out of range", "verify:\n  threshold: 1.5\n", "out of range"},
		{"empty listen", `listen: ""` + "\n", "listen address is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
