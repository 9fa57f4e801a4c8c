// Package resample converts PCM16 audio to the pipeline's canonical rate.
//
// The verification models downstream require mono 16 kHz input, so this
// package only deals in whole mono buffers. Rate conversion is delegated to
// a pure Go soxr-style resampler (no CGO).
package resample

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Downmix averages interleaved stereo PCM16 samples into mono.
func Downmix(stereo []int16) []int16 {
	mono := make([]int16, len(stereo)/2)
	for i := range mono {
		l := int32(stereo[i*2])
		r := int32(stereo[i*2+1])
		mono[i] = int16((l + r) / 2)
	}
	return mono
}

// Mono resamples a mono PCM16 buffer from srcRate to dstRate.
// When the rates are equal the input is returned unchanged.
func Mono(samples []int16, srcRate, dstRate int) ([]int16, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resample: invalid rate %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate {
		return samples, nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("resample: create resampler: %w", err)
	}

	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s) / 32768.0
	}

	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	out := make([]int16, len(output))
	for i, v := range output {
		switch {
		case v >= 1.0:
			out[i] = 32767
		case v <= -1.0:
			out[i] = -32768
		default:
			out[i] = int16(v * 32767.0)
		}
	}
	return out, nil
}
