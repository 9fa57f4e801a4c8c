// Package wav reads and writes RIFF/WAVE files containing 16-bit PCM audio.
//
// Only uncompressed PCM16 is supported. The decoder tolerates extra chunks
// (LIST, fact, cue) and reads mono or stereo data; the encoder always
// produces the canonical mono layout used throughout the pipeline.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// formatPCM is the WAVE format tag for uncompressed PCM.
const formatPCM = 1

// ErrNotPCM16 is returned when a WAV file uses a format other than
// uncompressed 16-bit PCM. Callers should fall back to a full decoder.
var ErrNotPCM16 = errors.New("wav: not 16-bit PCM")

// Info describes the format of a decoded WAV stream.
type Info struct {
	// SampleRate is the sample rate in Hz.
	SampleRate int

	// Channels is the number of interleaved channels (1 or 2).
	Channels int
}

// Decode reads a complete RIFF/WAVE stream and returns its format and
// interleaved PCM16 samples.
//
// Returns ErrNotPCM16 for compressed or non-16-bit formats so callers can
// route the input through a general-purpose decoder instead.
func Decode(r io.Reader) (Info, []int16, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Info{}, nil, fmt.Errorf("wav: read header: %w", err)
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return Info{}, nil, errors.New("wav: missing RIFF/WAVE header")
	}

	var (
		info    Info
		haveFmt bool
	)
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Info{}, nil, errors.New("wav: no data chunk")
			}
			return Info{}, nil, fmt.Errorf("wav: read chunk: %w", err)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return Info{}, nil, fmt.Errorf("wav: fmt chunk too small (%d bytes)", size)
			}
			buf := make([]byte, size)
			if _, err := io.ReadFull(r, buf); err != nil {
				return Info{}, nil, fmt.Errorf("wav: read fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(buf[0:2])
			channels := int(binary.LittleEndian.Uint16(buf[2:4]))
			rate := int(binary.LittleEndian.Uint32(buf[4:8]))
			bits := int(binary.LittleEndian.Uint16(buf[14:16]))
			if format != formatPCM || bits != 16 {
				return Info{}, nil, fmt.Errorf("%w (format=%d bits=%d)", ErrNotPCM16, format, bits)
			}
			if channels != 1 && channels != 2 {
				return Info{}, nil, fmt.Errorf("wav: unsupported channel count %d", channels)
			}
			if rate <= 0 {
				return Info{}, nil, fmt.Errorf("wav: invalid sample rate %d", rate)
			}
			info = Info{SampleRate: rate, Channels: channels}
			haveFmt = true

		case "data":
			if !haveFmt {
				return Info{}, nil, errors.New("wav: data chunk before fmt chunk")
			}
			raw := make([]byte, size)
			if _, err := io.ReadFull(r, raw); err != nil {
				return Info{}, nil, fmt.Errorf("wav: read data chunk: %w", err)
			}
			samples := make([]int16, len(raw)/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
			}
			return info, samples, nil

		default:
			// Skip LIST, fact, cue and friends. Chunks are word-aligned.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return Info{}, nil, fmt.Errorf("wav: skip %s chunk: %w", id, err)
			}
		}
	}
}

// Encode writes mono PCM16 samples as a RIFF/WAVE stream at the given
// sample rate.
func Encode(w io.Writer, sampleRate int, samples []int16) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav: invalid sample rate %d", sampleRate)
	}

	dataLen := len(samples) * 2
	const (
		channels = 1
		bits     = 16
	)
	blockAlign := channels * bits / 8
	byteRate := sampleRate * blockAlign

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataLen))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], formatPCM)
	binary.LittleEndian.PutUint16(hdr[22:24], channels)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], bits)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataLen))

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}

	buf := make([]byte, dataLen)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("wav: write data: %w", err)
	}
	return nil
}
