// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - wav: RIFF/WAVE PCM16 decoding and encoding
//   - resample: channel downmix and sample rate conversion
//   - normalize: upload validation and conversion to the canonical
//     mono 16 kHz PCM form the rest of the system consumes
package audio
