// Package wav provides utilities for WAV audio file handling.
package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// WAV format constants.
const (
	// HeaderSize is the size of a standard WAV file header in bytes.
	HeaderSize = 44

	// FormatPCM is the audio format code for uncompressed PCM.
	FormatPCM = 1
)

var (
	// ErrShortHeader is returned when the data is smaller than a WAV header.
	ErrShortHeader = errors.New("data shorter than WAV header")
	// ErrNotWAV is returned when the RIFF/WAVE markers are missing.
	ErrNotWAV = errors.New("not a WAV file")
)

// Info describes a WAV file's header.
type Info struct {
	Format        int
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataSize      int
}

// Duration computes the audio duration from the header fields.
// Returns zero when the header carries no usable rate information.
func (i Info) Duration() time.Duration {
	byteRate := i.SampleRate * i.Channels * i.BitsPerSample / 8
	if byteRate <= 0 {
		return 0
	}
	return time.Duration(float64(i.DataSize) / float64(byteRate) * float64(time.Second))
}

// ParseHeader reads the standard 44-byte WAV header.
func ParseHeader(data []byte) (Info, error) {
	if len(data) < HeaderSize {
		return Info{}, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(data))
	}

	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return Info{}, ErrNotWAV
	}
	if !bytes.Equal(data[12:16], []byte("fmt ")) {
		return Info{}, fmt.Errorf("%w: missing fmt subchunk", ErrNotWAV)
	}

	info := Info{
		Format:        int(getLE16(data[20:22])),
		Channels:      int(getLE16(data[22:24])),
		SampleRate:    int(getLE32(data[24:28])),
		BitsPerSample: int(getLE16(data[34:36])),
	}

	// The data subchunk usually follows fmt directly; fall back to the
	// RIFF size when it does not.
	if bytes.Equal(data[36:40], []byte("data")) {
		info.DataSize = int(getLE32(data[40:44]))
	} else {
		info.DataSize = int(getLE32(data[4:8])) - 36
	}

	return info, nil
}

// Inspect parses the header of a WAV file on disk.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrShortHeader, err)
	}

	return ParseHeader(header)
}

func getLE16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func getLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
