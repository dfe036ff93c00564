package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	// HTTP settings
	HTTPPort     int `toml:"http_port"`
	PortAttempts int `toml:"port_attempts"`

	// Bridge settings
	PythonPath    string        `toml:"python_path"`
	BridgeScript  string        `toml:"bridge_script"`
	BridgeTimeout time.Duration `toml:"-"` // env-only (BRIDGE_TIMEOUT), Go duration syntax

	// File layout
	PublicDir string `toml:"public_dir"`
	UploadDir string `toml:"upload_dir"`

	// Request limits
	MaxTextLength  int   `toml:"max_text_length"`
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// Audio settings
	FFmpegPath string `toml:"ffmpeg_path"`

	// Logging settings
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

// Load reads configuration, layering an optional TOML file (CONFIG_FILE)
// under environment variable overrides, with sane defaults.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		HTTPPort:       3000,
		PortAttempts:   20,
		PythonPath:     "python",
		BridgeScript:   filepath.Join("python", "spark_bridge.py"),
		BridgeTimeout:  0,
		PublicDir:      "public",
		UploadDir:      "uploads",
		MaxTextLength:  5000,
		MaxUploadBytes: 32 << 20,
		FFmpegPath:     "ffmpeg",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPPort = getEnvInt("HTTP_PORT", c.HTTPPort)
	c.PortAttempts = getEnvInt("PORT_ATTEMPTS", c.PortAttempts)
	c.PythonPath = getEnvString("PYTHON_PATH", c.PythonPath)
	c.BridgeScript = getEnvString("BRIDGE_SCRIPT", c.BridgeScript)
	c.BridgeTimeout = getEnvDuration("BRIDGE_TIMEOUT", c.BridgeTimeout)
	c.PublicDir = getEnvString("PUBLIC_DIR", c.PublicDir)
	c.UploadDir = getEnvString("UPLOAD_DIR", c.UploadDir)
	c.MaxTextLength = getEnvInt("MAX_TEXT_LENGTH", c.MaxTextLength)
	c.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
	c.FFmpegPath = getEnvString("FFMPEG_PATH", c.FFmpegPath)
	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvString("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnvString("LOG_FILE", c.LogFile)
}

// AudioDir returns the directory where generated audio files are written.
func (c *Config) AudioDir() string {
	return filepath.Join(c.PublicDir, "audio")
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return errors.New("HTTP_PORT must be between 1 and 65535")
	}

	if c.PortAttempts < 1 {
		return errors.New("PORT_ATTEMPTS must be at least 1")
	}

	if c.PythonPath == "" {
		return errors.New("PYTHON_PATH must not be empty")
	}

	if c.BridgeScript == "" {
		return errors.New("BRIDGE_SCRIPT must not be empty")
	}

	if c.BridgeTimeout < 0 {
		return errors.New("BRIDGE_TIMEOUT must be non-negative")
	}

	if c.MaxTextLength < 1 {
		return errors.New("MAX_TEXT_LENGTH must be at least 1")
	}

	if c.MaxUploadBytes < 1 {
		return errors.New("MAX_UPLOAD_BYTES must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		return errors.New("LOG_FORMAT must be one of: text, json")
	}

	return nil
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
