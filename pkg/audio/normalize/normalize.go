// Package normalize validates uploaded audio and converts it to the
// pipeline's canonical form: mono 16 kHz PCM16 WAV.
//
// Validation is deliberately layered so failures happen as early and as
// cheaply as possible: declared extension, declared MIME type, saved byte
// size, then the actual decode. Plain PCM16 WAV uploads are decoded in
// process; every other container goes through ffmpeg, which handles the
// full allow-list (mp3, ogg, flac, m4a, aac, webm).
package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/vospect/vospect/pkg/audio/resample"
	"github.com/vospect/vospect/pkg/audio/wav"
)

const (
	// TargetSampleRate is the canonical sample rate. Dictated by the
	// embedding model's input requirements, not negotiable per request.
	TargetSampleRate = 16000

	// MinUploadBytes is the minimum accepted upload size after save.
	// Roughly two seconds of audio at typical bitrates.
	MinUploadBytes = 4096

	// DefaultFFmpeg is the ffmpeg binary resolved from PATH.
	DefaultFFmpeg = "ffmpeg"
)

// Validation and decode failures. Wrapped errors carry detail for logs;
// these sentinels are what transport layers should match on.
var (
	ErrUnsupportedFormat = errors.New("normalize: unsupported audio format")
	ErrInvalidMIMEType   = errors.New("normalize: invalid audio MIME type")
	ErrAudioTooShort     = errors.New("normalize: audio too short")
	ErrAudioDecode       = errors.New("normalize: audio decode failed")
)

var supportedExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".ogg": true, ".flac": true,
	".m4a": true, ".aac": true, ".webm": true,
}

var supportedMIMETypes = map[string]bool{
	"audio/wav": true, "audio/mpeg": true, "audio/ogg": true,
	"audio/flac": true, "audio/mp4": true, "audio/aac": true,
	"audio/x-wav": true, "audio/x-m4a": true, "audio/webm": true,
	"audio/x-matroska": true,
}

// Extensions returns the supported upload extensions, for diagnostics.
func Extensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for e := range supportedExtensions {
		exts = append(exts, e)
	}
	return exts
}

// ValidateFormat checks the declared filename extension and MIME type
// against the allow-lists and returns the lowercased extension.
//
// An empty MIME type is not an error; a declared but unrecognized one is.
func ValidateFormat(filename, mimeType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExtensions[ext] {
		return "", fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedFormat, ext, strings.Join(Extensions(), ", "))
	}
	if mt := strings.ToLower(mimeType); mt != "" && !supportedMIMETypes[mt] {
		return "", fmt.Errorf("%w: %q", ErrInvalidMIMEType, mt)
	}
	return ext, nil
}

// ValidateSize checks that the saved upload meets the minimum byte size.
// An undersized file is removed before the error is returned.
func ValidateSize(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("normalize: stat upload: %w", err)
	}
	if fi.Size() < MinUploadBytes {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.Warn("failed to remove undersized upload", "error", rmErr)
		}
		return fmt.Errorf("%w: %d bytes (minimum %d, upload at least 2 seconds of audio)",
			ErrAudioTooShort, fi.Size(), MinUploadBytes)
	}
	return nil
}

// Normalizer converts saved uploads into canonical waveform files.
type Normalizer struct {
	// FFmpeg is the ffmpeg binary used for non-WAV containers.
	// Defaults to DefaultFFmpeg.
	FFmpeg string

	// Log receives decode diagnostics. Defaults to slog.Default().
	Log *slog.Logger
}

// New returns a Normalizer using the given ffmpeg binary ("" for the
// default).
func New(ffmpeg string) *Normalizer {
	if ffmpeg == "" {
		ffmpeg = DefaultFFmpeg
	}
	return &Normalizer{FFmpeg: ffmpeg, Log: slog.Default()}
}

// Normalize decodes src (any supported container) and writes the canonical
// mono 16 kHz PCM16 WAV to dst. Any partially written dst is removed on
// failure.
func (n *Normalizer) Normalize(ctx context.Context, src, dst string) error {
	if err := n.normalize(ctx, src, dst); err != nil {
		if rmErr := os.Remove(dst); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			n.logger().Warn("failed to remove partial waveform", "error", rmErr)
		}
		return err
	}
	return nil
}

func (n *Normalizer) normalize(ctx context.Context, src, dst string) error {
	// Plain PCM16 WAV decodes in process; anything else, including WAV
	// variants we don't parse, falls through to ffmpeg.
	if strings.EqualFold(filepath.Ext(src), ".wav") {
		if err := n.normalizeWAV(src, dst); err == nil {
			return nil
		} else if ctx.Err() != nil {
			return ctx.Err()
		} else {
			n.logger().Debug("native wav decode failed, falling back to ffmpeg", "error", err)
		}
	}
	return n.normalizeFFmpeg(ctx, src, dst)
}

func (n *Normalizer) normalizeWAV(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	info, samples, err := wav.Decode(f)
	if err != nil {
		return err
	}
	if info.Channels == 2 {
		samples = resample.Downmix(samples)
	}
	samples, err = resample.Mono(samples, info.SampleRate, TargetSampleRate)
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := wav.Encode(out, TargetSampleRate, samples); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (n *Normalizer) normalizeFFmpeg(ctx context.Context, src, dst string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", fmt.Sprint(TargetSampleRate),
		"-c:a", "pcm_s16le",
		dst,
	}
	cmd := exec.CommandContext(ctx, n.ffmpeg(), args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		n.logger().Warn("ffmpeg decode failed",
			"error", err, "output", strings.TrimSpace(string(output)))
		return fmt.Errorf("%w: %v", ErrAudioDecode, err)
	}
	return nil
}

func (n *Normalizer) ffmpeg() string {
	if n.FFmpeg != "" {
		return n.FFmpeg
	}
	return DefaultFFmpeg
}

func (n *Normalizer) logger() *slog.Logger {
	if n.Log != nil {
		return n.Log
	}
	return slog.Default()
}
