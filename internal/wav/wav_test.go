package wav

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// buildWAV constructs a minimal WAV file for tests.
func buildWAV(dataSize, sampleRate, channels, bitsPerSample int) []byte {
	header := make([]byte, HeaderSize)

	copy(header[0:4], "RIFF")
	putLE32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	putLE32(header[16:20], 16)
	putLE16(header[20:22], FormatPCM)
	putLE16(header[22:24], uint16(channels))
	putLE32(header[24:28], uint32(sampleRate))
	putLE32(header[28:32], uint32(sampleRate*channels*bitsPerSample/8))
	putLE16(header[32:34], uint16(channels*bitsPerSample/8))
	putLE16(header[34:36], uint16(bitsPerSample))

	copy(header[36:40], "data")
	putLE32(header[40:44], uint32(dataSize))

	return append(header, make([]byte, dataSize)...)
}

func putLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func TestParseHeader(t *testing.T) {
	data := buildWAV(32000, 16000, 1, 16)

	info, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}

	if info.Format != FormatPCM {
		t.Errorf("Format = %d, want %d", info.Format, FormatPCM)
	}
	if info.Channels != 1 {
		t.Errorf("Channels = %d, want 1", info.Channels)
	}
	if info.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", info.SampleRate)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("BitsPerSample = %d, want 16", info.BitsPerSample)
	}
	if info.DataSize != 32000 {
		t.Errorf("DataSize = %d, want 32000", info.DataSize)
	}

	// 32000 bytes at 16kHz mono 16-bit is exactly one second.
	if info.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", info.Duration())
	}
}

func TestParseHeader_Stereo(t *testing.T) {
	data := buildWAV(176400, 44100, 2, 16)

	info, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if info.Channels != 2 {
		t.Errorf("Channels = %d, want 2", info.Channels)
	}
	if info.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", info.Duration())
	}
}

func TestParseHeader_Short(t *testing.T) {
	_, err := ParseHeader([]byte("RIFF"))
	if !errors.Is(err, ErrShortHeader) {
		t.Errorf("expected ErrShortHeader, got %v", err)
	}
}

func TestParseHeader_NotWAV(t *testing.T) {
	data := make([]byte, HeaderSize)
	copy(data, "OGGS")

	_, err := ParseHeader(data)
	if !errors.Is(err, ErrNotWAV) {
		t.Errorf("expected ErrNotWAV, got %v", err)
	}
}

func TestParseHeader_ZeroRate(t *testing.T) {
	data := buildWAV(100, 0, 0, 0)

	info, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if info.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0 for zero byte rate", info.Duration())
	}
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, buildWAV(32000, 16000, 1, 16), 0o644); err != nil {
		t.Fatalf("failed to write sample: %v", err)
	}

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", info.SampleRate)
	}
}

func TestInspect_Missing(t *testing.T) {
	if _, err := Inspect(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInspect_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("failed to write sample: %v", err)
	}

	_, err := Inspect(path)
	if !errors.Is(err, ErrShortHeader) {
		t.Errorf("expected ErrShortHeader, got %v", err)
	}
}
