// Package config loads the daemon configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/vospect/vospect/pkg/voiceprint"
	"github.com/vospect/vospect/pkg/voiceprint/remote"
)

// Config is the top-level daemon configuration.
type Config struct {
	// Listen is the HTTP bind address.
	Listen string `yaml:"listen"`

	// DataDir holds the identity databases and local recordings.
	DataDir string `yaml:"data_dir"`

	Storage   Storage   `yaml:"storage"`
	Extractor Extractor `yaml:"extractor"`
	Verify    Verify    `yaml:"verify"`
	Audio     Audio     `yaml:"audio"`
}

// Storage selects where enrollment recordings are kept.
type Storage struct {
	// Backend is "local" or "s3".
	Backend string `yaml:"backend"`
	Bucket  string `yaml:"bucket"`
	Prefix  string `yaml:"prefix"`
}

// Extractor points at the embedding sidecar.
type Extractor struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Verify holds the match policy.
type Verify struct {
	Threshold float64 `yaml:"threshold"`
}

// Audio configures upload decoding.
type Audio struct {
	// FFmpeg is the decoder binary for non-wav uploads.
	FFmpeg string `yaml:"ffmpeg"`
}

// Default returns a runnable configuration.
func Default() *Config {
	return &Config{
		Listen:  ":8080",
		DataDir: "data",
		Storage: Storage{Backend: "local"},
		Extractor: Extractor{
			BaseURL: remote.DefaultBaseURL,
			Timeout: remote.DefaultTimeout,
		},
		Verify: Verify{Threshold: voiceprint.DefaultThreshold},
		Audio:  Audio{FFmpeg: "ffmpeg"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Extractor.BaseURL == "" {
		return fmt.Errorf("extractor.base_url is required")
	}
	if c.Verify.Threshold < 0 || c.Verify.Threshold > 1 {
		return fmt.Errorf("verify.threshold %v out of range [0, 1]", c.Verify.Threshold)
	}
	return nil
}
