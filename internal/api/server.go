package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgnsrekt/sparkvoice/internal/audio"
	"github.com/dgnsrekt/sparkvoice/internal/bridge"
	"github.com/dgnsrekt/sparkvoice/internal/config"
	"github.com/dgnsrekt/sparkvoice/internal/state"
)

// Synthesizer is the bridge surface the TTS handler needs.
// Satisfied by *bridge.Bridge.
type Synthesizer interface {
	Synthesize(ctx context.Context, req bridge.SynthesisRequest) (*bridge.Result, []string, error)
}

// Server handles HTTP requests for the demo pages and the TTS API.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	synth     Synthesizer
	state     *state.Manager
	converter *audio.Converter // nil when ffmpeg is unavailable
	server    *http.Server
}

// New creates a new server. converter may be nil; uploaded voice samples are
// then passed to the bridge unconverted.
func New(cfg *config.Config, logger *slog.Logger, synth Synthesizer, st *state.Manager, converter *audio.Converter) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		synth:     synth,
		state:     st,
		converter: converter,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /spark-tts", s.handleSparkTTS)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/voices", s.handleVoices)
	mux.HandleFunc("POST /api/tts", s.withRecovery(s.handleTTS))
	mux.Handle("GET /public/", http.StripPrefix("/public/", http.FileServer(http.Dir(cfg.PublicDir))))

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		// No write timeout: synthesis blocks for as long as the bridge runs.
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
