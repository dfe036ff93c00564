package api

import (
	"encoding/json"
	"net/http"
)

// withRecovery converts a panic during request handling into a 500 JSON
// response instead of killing the connection.
func (s *Server) withRecovery(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic during request handling",
					"path", r.URL.Path,
					"panic", rec,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(APIError{
					Success: false,
					Message: "Internal server error",
				})
			}
		}()

		next(w, r)
	}
}
