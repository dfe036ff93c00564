// Package bridge invokes the external Spark-TTS Python bridge and parses
// its line-oriented output.
package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Actions understood by the bridge script.
const (
	ActionTTS        = "tts"
	ActionListVoices = "list_voices"
)

var (
	// ErrPythonNotFound is returned when the Python interpreter is not found.
	ErrPythonNotFound = errors.New("python interpreter not found")
	// ErrScriptNotFound is returned when the bridge script does not exist.
	ErrScriptNotFound = errors.New("bridge script not found")
	// ErrBridgeFailed is returned when the bridge process cannot start or
	// exits abnormally.
	ErrBridgeFailed = errors.New("bridge process failed")
)

// Config holds configuration for the subprocess bridge.
type Config struct {
	// PythonPath is the Python interpreter used to run the bridge script.
	PythonPath string
	// ScriptPath is the path to spark_bridge.py.
	ScriptPath string
	// WorkDir is the working directory for the subprocess. Empty means the
	// server's working directory.
	WorkDir string
	// Timeout bounds a single bridge call. Zero means no timeout; the call
	// blocks until the subprocess exits.
	Timeout time.Duration
}

// Bridge spawns the external Python process that performs all TTS and
// voice-registry operations.
type Bridge struct {
	config Config
	logger *slog.Logger
}

// New creates a bridge after checking the interpreter and script exist.
func New(cfg Config, logger *slog.Logger) (*Bridge, error) {
	if cfg.PythonPath == "" {
		cfg.PythonPath = "python"
	}

	if _, err := exec.LookPath(cfg.PythonPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPythonNotFound, cfg.PythonPath)
	}

	if cfg.ScriptPath == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(cfg.ScriptPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, cfg.ScriptPath)
	}

	return &Bridge{
		config: cfg,
		logger: logger,
	}, nil
}

// Run invokes the bridge script with the given action and flags, and returns
// stdout as an ordered sequence of lines. The bridge emits free-text
// diagnostics interleaved with single-line JSON objects; callers scan the
// lines for the JSON they need. When the process exits abnormally the lines
// captured so far are still returned alongside the error.
func (b *Bridge) Run(ctx context.Context, action string, args ...string) ([]string, error) {
	if b.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}

	cmdArgs := append([]string{b.config.ScriptPath, "--action", action}, args...)
	cmd := exec.CommandContext(ctx, b.config.PythonPath, cmdArgs...)
	cmd.Dir = b.config.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.logger.Debug("running bridge",
		"python", b.config.PythonPath,
		"script", b.config.ScriptPath,
		"action", action,
	)

	start := time.Now()
	err := cmd.Run()
	lines := splitLines(stdout.String())

	if err != nil {
		if ctx.Err() != nil {
			return lines, fmt.Errorf("%w: %v", ErrBridgeFailed, ctx.Err())
		}
		b.logger.Error("bridge failed",
			"action", action,
			"error", err,
			"stderr", strings.TrimSpace(stderr.String()),
		)
		return lines, fmt.Errorf("%w: %v", ErrBridgeFailed, err)
	}

	b.logger.Debug("bridge finished",
		"action", action,
		"lines", len(lines),
		"duration", time.Since(start),
	)

	return lines, nil
}

// ListVoices runs the list_voices action and scans for the voice registry.
// The raw output lines are returned for status merging by the caller.
func (b *Bridge) ListVoices(ctx context.Context) (*VoiceList, []string, error) {
	lines, err := b.Run(ctx, ActionListVoices)
	if err != nil {
		return nil, lines, err
	}

	list, err := ParseVoiceList(lines)
	if err != nil {
		return nil, lines, err
	}

	return list, lines, nil
}

// SynthesisRequest describes one tts action invocation.
type SynthesisRequest struct {
	Text string
	// VoiceID selects a registered voice. Ignored when CustomVoice is set.
	VoiceID string
	// CustomVoice is a path to a voice sample for cloning.
	CustomVoice string
	// OutputPath is where the bridge writes the generated WAV.
	OutputPath string
}

// Synthesize runs the tts action and scans the output for the result line.
// The raw output lines are returned for diagnostics.
func (b *Bridge) Synthesize(ctx context.Context, req SynthesisRequest) (*Result, []string, error) {
	args := []string{"--text", req.Text, "--output", req.OutputPath}
	if req.CustomVoice != "" {
		args = append(args, "--custom-voice", req.CustomVoice)
	} else if req.VoiceID != "" {
		args = append(args, "--voice-id", req.VoiceID)
	}

	lines, err := b.Run(ctx, ActionTTS, args...)
	if err != nil {
		return nil, lines, err
	}

	result, err := ParseResult(lines)
	if err != nil {
		return nil, lines, err
	}

	return result, lines, nil
}

// splitLines breaks process output into trimmed, non-empty lines.
func splitLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
