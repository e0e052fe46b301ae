// Package placeholders serves the dashboard routes that have no backing data
// yet: timelines, politicians, alerts and reports.
package placeholders

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxAlertBytes = 16 << 10

// Handler serves empty collections for dashboard pages
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new placeholder handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{log: log.With().Str("handler", "placeholders").Logger()}
}

// RegisterRoutes registers the placeholder routes. They are mounted under
// /api behind the token middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/timelines", h.HandleEmptyList)
	r.Get("/politicians", h.HandleEmptyList)
	r.Get("/reports", h.HandleEmptyList)
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.HandleEmptyList)
		r.Post("/", h.HandleCreateAlert)
	})
}

// HandleEmptyList returns an empty JSON array.
func (h *Handler) HandleEmptyList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, []struct{}{})
}

// HandleCreateAlert accepts any JSON object without storing it.
func (h *Handler) HandleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAlertBytes)).Decode(&payload); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "alert must be a JSON object"})
		return
	}

	h.log.Debug().Int("fields", len(payload)).Msg("Alert accepted, not persisted")
	h.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
