// Package logging configures the application's structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for file-backed logs.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 28
)

// New creates a structured logger writing to stderr.
// Level is one of: debug, info, warn, error. Format is "text" or "json".
func New(level, format string) *slog.Logger {
	return newLogger(os.Stderr, level, format)
}

// NewWithFile creates a logger writing to a size-rotated log file.
// An empty path falls back to stderr.
func NewWithFile(level, format, path string) *slog.Logger {
	if path == "" {
		return New(level, format)
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	return newLogger(rotator, level, format)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
