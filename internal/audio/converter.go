// Package audio normalizes uploaded voice samples for the TTS bridge.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

const (
	// SampleRate is the sample rate Spark-TTS expects for voice samples.
	SampleRate = 16000
	// Channels is the channel count Spark-TTS expects for voice samples.
	Channels = 1
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg is not installed.
	ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")
	// ErrConversionFailed is returned when ffmpeg conversion fails.
	ErrConversionFailed = errors.New("audio conversion failed")
)

// Converter normalizes uploaded audio to the sample format the bridge's
// voice-cloning path expects.
type Converter struct {
	ffmpegPath string
}

// NewConverter creates a new audio converter.
func NewConverter() (*Converter, error) {
	return NewConverterWithPath("ffmpeg")
}

// NewConverterWithPath creates a converter with a specific ffmpeg binary.
func NewConverterWithPath(path string) (*Converter, error) {
	if path == "" {
		path = "ffmpeg"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFFmpegNotFound, path)
	}
	return &Converter{ffmpegPath: resolved}, nil
}

// NormalizeSample converts an uploaded audio sample (any container ffmpeg
// understands) to 16kHz mono 16-bit WAV.
// Input: uploaded file bytes. Output: WAV file bytes ready for --custom-voice.
func (c *Converter) NormalizeSample(ctx context.Context, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty input data")
	}

	// ffmpeg command to normalize any input to the bridge's sample format:
	// -i pipe:0: Read from stdin, container sniffed from the stream
	// -ar 16000: Output sample rate 16kHz
	// -ac 1: Output mono
	// -f wav: Output a WAV container
	// pipe:1: Write to stdout
	args := []string{
		"-i", "pipe:0",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-f", "wav",
		"-loglevel", "error",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", ErrConversionFailed, stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: no output", ErrConversionFailed)
	}

	return stdout.Bytes(), nil
}
