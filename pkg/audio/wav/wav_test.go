package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = int16(i % 100)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, 16000, samples); err != nil {
		t.Fatal(err)
	}

	info, got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if info.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("Channels = %d, want 1", info.Channels)
	}
	if len(got) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestDecodeSkipsExtraChunks(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, 8000, []int16{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}

	// Splice a LIST chunk between fmt and data.
	raw := buf.Bytes()
	list := make([]byte, 8+6)
	copy(list[0:4], "LIST")
	binary.LittleEndian.PutUint32(list[4:8], 6)
	spliced := append(append(append([]byte{}, raw[:36]...), list...), raw[36:]...)
	binary.LittleEndian.PutUint32(spliced[4:8], binary.LittleEndian.Uint32(spliced[4:8])+uint32(len(list)))

	info, samples, err := Decode(bytes.NewReader(spliced))
	if err != nil {
		t.Fatal(err)
	}
	if info.SampleRate != 8000 || len(samples) != 4 {
		t.Errorf("got rate=%d len=%d, want rate=8000 len=4", info.SampleRate, len(samples))
	}
}

func TestDecodeRejectsNonWAV(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("OggS\x00\x00\x00\x00\x00\x00\x00\x00garbage")))
	if err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}

func TestDecodeRejectsNonPCM16(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, 16000, []int16{0, 0}); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	// Rewrite the format tag to IEEE float (3).
	binary.LittleEndian.PutUint16(raw[20:22], 3)

	_, _, err := Decode(bytes.NewReader(raw))
	if !errors.Is(err, ErrNotPCM16) {
		t.Fatalf("err = %v, want ErrNotPCM16", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, 16000, make([]int16, 100)); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()

	_, _, err := Decode(bytes.NewReader(raw[:len(raw)-10]))
	if err == nil {
		t.Fatal("expected error for truncated data chunk")
	}
}
