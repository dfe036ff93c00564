package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/sparkvoice/internal/bridge"
	"github.com/dgnsrekt/sparkvoice/internal/wav"
)

// Multipart parse buffer; larger uploads spill to disk.
const maxFormMemory = 10 << 20

// TTSResponse is the success body for POST /api/tts.
type TTSResponse struct {
	Success  bool              `json:"success"`
	AudioURL string            `json:"audioUrl"`
	Message  string            `json:"message,omitempty"`
	Voice    *bridge.VoiceInfo `json:"voice,omitempty"`
}

// VoicesResponse is the success body for GET /api/voices.
type VoicesResponse struct {
	Success bool                    `json:"success"`
	Voices  map[string]bridge.Voice `json:"voices"`
}

// APIError is the failure body for API routes.
type APIError struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	Trace     string `json:"trace,omitempty"`
	RawOutput string `json:"rawOutput,omitempty"`
}

// HealthResponse is the body for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealthz handles GET /healthz requests.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleVoices handles GET /api/voices requests. The voice list is refreshed
// via the bridge before responding.
func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	if err := s.state.Refresh(r.Context()); err != nil {
		s.logger.Error("voice list refresh failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, APIError{
			Success: false,
			Message: "Failed to list voices",
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, VoicesResponse{
		Success: true,
		Voices:  s.state.Voices(),
	})
}

// handleTTS handles POST /api/tts requests. The body is multipart or
// urlencoded form data with a required text field and either a voiceId or an
// uploaded customVoice sample.
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	w.Header().Set("X-Request-ID", requestID)
	logger := s.logger.With("request_id", requestID)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			logger.Warn("failed to parse multipart form", "error", err)
			writeJSON(w, http.StatusBadRequest, APIError{
				Success: false,
				Message: "Invalid form body",
			})
			return
		}
	}

	text := r.FormValue("text")
	if strings.TrimSpace(text) == "" {
		writeJSON(w, http.StatusBadRequest, APIError{
			Success: false,
			Message: "Text is required",
		})
		return
	}
	if len(text) > s.cfg.MaxTextLength {
		logger.Warn("text exceeds max length", "length", len(text), "max", s.cfg.MaxTextLength)
		writeJSON(w, http.StatusBadRequest, APIError{
			Success: false,
			Message: "Text exceeds maximum length",
		})
		return
	}

	req := bridge.SynthesisRequest{
		Text:    text,
		VoiceID: r.FormValue("voiceId"),
	}

	// An uploaded sample takes precedence over a registered voice id. It is
	// persisted for the duration of the bridge call only.
	samplePath, err := s.saveCustomVoice(r)
	if err != nil {
		logger.Warn("failed to save uploaded voice sample", "error", err)
		writeJSON(w, http.StatusBadRequest, APIError{
			Success: false,
			Message: "Failed to process uploaded voice sample",
		})
		return
	}
	if samplePath != "" {
		req.CustomVoice = samplePath
		defer func() {
			if err := os.Remove(samplePath); err != nil {
				logger.Warn("failed to remove voice sample", "path", samplePath, "error", err)
			}
		}()
	}

	outputName := fmt.Sprintf("output_%d.wav", time.Now().UnixNano())
	if err := os.MkdirAll(s.cfg.AudioDir(), 0o755); err != nil {
		logger.Error("failed to create audio directory", "error", err)
		writeJSON(w, http.StatusInternalServerError, APIError{
			Success: false,
			Message: "Failed to prepare output directory",
		})
		return
	}
	req.OutputPath = filepath.Join(s.cfg.AudioDir(), outputName)

	logger.Info("synthesis request",
		"text_length", len(text),
		"voice_id", req.VoiceID,
		"custom_voice", samplePath != "",
	)

	result, lines, err := s.synth.Synthesize(r.Context(), req)
	if err != nil {
		s.writeSynthesisError(w, logger, err, lines)
		return
	}

	if !result.Success {
		logger.Error("synthesis reported failure", "message", result.Message)
		writeJSON(w, http.StatusInternalServerError, APIError{
			Success: false,
			Message: result.Message,
			Trace:   result.Trace,
		})
		return
	}

	// Best-effort inspection of the generated file; never affects the response.
	if info, err := wav.Inspect(req.OutputPath); err != nil {
		logger.Warn("could not inspect generated audio", "path", req.OutputPath, "error", err)
	} else {
		logger.Info("audio generated",
			"path", req.OutputPath,
			"duration", info.Duration(),
			"sample_rate", info.SampleRate,
		)
	}

	resp := TTSResponse{
		Success:  true,
		AudioURL: "/public/audio/" + outputName,
		Message:  result.Message,
	}
	if result.Voice != (bridge.VoiceInfo{}) {
		voice := result.Voice
		resp.Voice = &voice
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeSynthesisError maps bridge errors onto API failure responses.
func (s *Server) writeSynthesisError(w http.ResponseWriter, logger *slog.Logger, err error, lines []string) {
	switch {
	case errors.Is(err, bridge.ErrNotInstalled):
		logger.Error("Spark-TTS modules missing")
		writeJSON(w, http.StatusInternalServerError, APIError{
			Success: false,
			Message: "Spark-TTS is not properly installed. Install the Python dependencies and restart the server.",
		})
	case errors.Is(err, bridge.ErrNoResult):
		logger.Error("no parseable result in bridge output", "lines", len(lines))
		writeJSON(w, http.StatusInternalServerError, APIError{
			Success:   false,
			Message:   "Failed to parse TTS result",
			RawOutput: bridge.RawOutput(lines),
		})
	default:
		logger.Error("synthesis failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, APIError{
			Success: false,
			Message: "TTS processing failed",
			Error:   err.Error(),
		})
	}
}

// saveCustomVoice persists an uploaded customVoice file to the upload
// directory, normalizing it with ffmpeg when available. Returns "" when the
// request carries no upload.
func (s *Server) saveCustomVoice(r *http.Request) (string, error) {
	file, header, err := r.FormFile("customVoice")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("uploaded voice sample is empty")
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".wav"
	}

	if s.converter != nil {
		normalized, err := s.converter.NormalizeSample(r.Context(), data)
		if err != nil {
			// Pass the original through; the bridge may still accept it.
			s.logger.Warn("sample normalization failed, using original", "error", err)
		} else {
			data = normalized
			ext = ".wav"
		}
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.cfg.UploadDir, fmt.Sprintf("sample_%d%s", time.Now().UnixNano(), ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write voice sample: %w", err)
	}

	return path, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
