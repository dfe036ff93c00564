package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/dgnsrekt/sparkvoice/internal/state"
)

//go:embed templates
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// pageData is the payload for the HTML templates.
type pageData struct {
	System state.SystemInfo
}

// handleIndex renders the landing page from the cached snapshot. No bridge
// call happens here; the page reflects whatever the last refresh saw.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "index.html", pageData{System: s.state.Snapshot()})
}

// handleSparkTTS refreshes the voice list and renders the demo form page.
// Refresh failures are logged and swallowed; the page serves stale data.
func (s *Server) handleSparkTTS(w http.ResponseWriter, r *http.Request) {
	if err := s.state.Refresh(r.Context()); err != nil {
		s.logger.Warn("voice refresh before demo page failed", "error", err)
	}
	s.renderPage(w, "spark-tts.html", pageData{System: s.state.Snapshot()})
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
