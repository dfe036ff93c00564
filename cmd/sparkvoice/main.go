// Command sparkvoice runs the Spark-TTS demonstration web server. All
// synthesis work is delegated to the external Python bridge; this process
// serves the demo pages, the HTTP API, and the generated audio files.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dgnsrekt/sparkvoice/internal/api"
	"github.com/dgnsrekt/sparkvoice/internal/audio"
	"github.com/dgnsrekt/sparkvoice/internal/bridge"
	"github.com/dgnsrekt/sparkvoice/internal/config"
	"github.com/dgnsrekt/sparkvoice/internal/logging"
	"github.com/dgnsrekt/sparkvoice/internal/netprobe"
	"github.com/dgnsrekt/sparkvoice/internal/state"
)

func main() {
	// Load configuration from file and environment
	cfg, err := config.Load()
	if err != nil {
		// Use stderr before logger is initialized
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize structured logger
	logger := logging.NewWithFile(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	logger.Info("starting sparkvoice", "version", "0.1.0")

	logger.Info("configuration loaded",
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"http_port", cfg.HTTPPort,
		"port_attempts", cfg.PortAttempts,
		"python_path", cfg.PythonPath,
		"bridge_script", cfg.BridgeScript,
		"bridge_timeout", cfg.BridgeTimeout,
		"max_text_length", cfg.MaxTextLength,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	// Initialize the Python bridge
	ttsBridge, err := bridge.New(bridge.Config{
		PythonPath: cfg.PythonPath,
		ScriptPath: cfg.BridgeScript,
		Timeout:    cfg.BridgeTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize TTS bridge", "error", err)
		os.Exit(1)
	}

	// Initialize the optional sample converter
	converter, err := audio.NewConverterWithPath(cfg.FFmpegPath)
	if err != nil {
		logger.Warn("ffmpeg not available, uploaded samples will not be normalized", "error", err)
		converter = nil
	}

	// Prime the system snapshot; failure is logged and the server starts
	// with empty state.
	systemState := state.NewManager(ttsBridge, logger)
	if err := systemState.Refresh(ctx); err != nil {
		logger.Warn("initial state refresh failed", "error", err)
	} else {
		info := systemState.Snapshot()
		logger.Info("system state primed",
			"gpu_available", info.GPUAvailable,
			"gpu_name", info.GPUName,
			"model_loaded", info.ModelLoaded,
			"voices", len(info.Voices),
		)
	}

	// Make sure the static directories exist before serving them
	if err := os.MkdirAll(cfg.AudioDir(), 0o755); err != nil {
		logger.Error("failed to create audio directory", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("failed to create upload directory", "error", err)
		os.Exit(1)
	}

	// Find a free port, falling forward from the configured one
	port, err := netprobe.FreePort(cfg.HTTPPort, cfg.PortAttempts)
	if err != nil {
		logger.Error("no free port available", "start", cfg.HTTPPort, "error", err)
		os.Exit(1)
	}
	if port != cfg.HTTPPort {
		logger.Warn("configured port occupied, falling forward", "configured", cfg.HTTPPort, "port", port)
	}
	cfg.HTTPPort = port

	// Create and start HTTP server
	server := api.New(cfg, logger, ttsBridge, systemState, converter)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	logger.Info("sparkvoice ready", "url", "http://localhost:"+strconv.Itoa(port))

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
}
