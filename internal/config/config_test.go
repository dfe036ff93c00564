package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"CONFIG_FILE", "HTTP_PORT", "PORT_ATTEMPTS", "PYTHON_PATH",
		"BRIDGE_SCRIPT", "BRIDGE_TIMEOUT", "PUBLIC_DIR", "UPLOAD_DIR",
		"MAX_TEXT_LENGTH", "MAX_UPLOAD_BYTES", "FFMPEG_PATH",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPPort != 3000 {
		t.Errorf("HTTPPort = %d, want 3000", cfg.HTTPPort)
	}
	if cfg.PortAttempts != 20 {
		t.Errorf("PortAttempts = %d, want 20", cfg.PortAttempts)
	}
	if cfg.PythonPath != "python" {
		t.Errorf("PythonPath = %s, want python", cfg.PythonPath)
	}
	if cfg.BridgeScript != filepath.Join("python", "spark_bridge.py") {
		t.Errorf("BridgeScript = %s, want python/spark_bridge.py", cfg.BridgeScript)
	}
	if cfg.BridgeTimeout != 0 {
		t.Errorf("BridgeTimeout = %v, want 0", cfg.BridgeTimeout)
	}
	if cfg.PublicDir != "public" {
		t.Errorf("PublicDir = %s, want public", cfg.PublicDir)
	}
	if cfg.MaxTextLength != 5000 {
		t.Errorf("MaxTextLength = %d, want 5000", cfg.MaxTextLength)
	}
	if cfg.MaxUploadBytes != 32<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 32<<20)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %s, want text", cfg.LogFormat)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PORT_ATTEMPTS", "5")
	t.Setenv("PYTHON_PATH", "python3")
	t.Setenv("BRIDGE_SCRIPT", "bridge/spark_bridge.py")
	t.Setenv("BRIDGE_TIMEOUT", "90s")
	t.Setenv("MAX_TEXT_LENGTH", "500")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.PortAttempts != 5 {
		t.Errorf("PortAttempts = %d, want 5", cfg.PortAttempts)
	}
	if cfg.PythonPath != "python3" {
		t.Errorf("PythonPath = %s, want python3", cfg.PythonPath)
	}
	if cfg.BridgeTimeout != 90*time.Second {
		t.Errorf("BridgeTimeout = %v, want 90s", cfg.BridgeTimeout)
	}
	if cfg.MaxTextLength != 500 {
		t.Errorf("MaxTextLength = %d, want 500", cfg.MaxTextLength)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", cfg.LogFormat)
	}
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "sparkvoice.toml")
	content := `
http_port = 4000
python_path = "python3"
max_text_length = 2000
log_level = "warn"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPPort != 4000 {
		t.Errorf("HTTPPort = %d, want 4000", cfg.HTTPPort)
	}
	if cfg.PythonPath != "python3" {
		t.Errorf("PythonPath = %s, want python3", cfg.PythonPath)
	}
	if cfg.MaxTextLength != 2000 {
		t.Errorf("MaxTextLength = %d, want 2000", cfg.MaxTextLength)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %s, want warn", cfg.LogLevel)
	}
	// Untouched fields keep defaults
	if cfg.PortAttempts != 20 {
		t.Errorf("PortAttempts = %d, want 20", cfg.PortAttempts)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "sparkvoice.toml")
	if err := os.WriteFile(path, []byte("http_port = 4000\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "5000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPPort != 5000 {
		t.Errorf("HTTPPort = %d, want 5000 (env should win)", cfg.HTTPPort)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.toml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("http_port = [broken"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"port too low", func(c *Config) { c.HTTPPort = 0 }, true},
		{"port too high", func(c *Config) { c.HTTPPort = 70000 }, true},
		{"zero attempts", func(c *Config) { c.PortAttempts = 0 }, true},
		{"empty python path", func(c *Config) { c.PythonPath = "" }, true},
		{"empty bridge script", func(c *Config) { c.BridgeScript = "" }, true},
		{"negative timeout", func(c *Config) { c.BridgeTimeout = -time.Second }, true},
		{"zero max text", func(c *Config) { c.MaxTextLength = 0 }, true},
		{"zero max upload", func(c *Config) { c.MaxUploadBytes = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAudioDir(t *testing.T) {
	cfg := defaults()
	if cfg.AudioDir() != filepath.Join("public", "audio") {
		t.Errorf("AudioDir() = %s, want public/audio", cfg.AudioDir())
	}
}
