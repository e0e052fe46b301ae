// Package handlers provides HTTP handlers for text sentiment scoring.
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/aristath/portfolio-tracker/internal/modules/sentiment"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxTextBytes = 64 << 10

// Handler handles sentiment HTTP requests
type Handler struct {
	analyzer *sentiment.Analyzer
	log      zerolog.Logger
}

// NewHandler creates a new sentiment handler
func NewHandler(analyzer *sentiment.Analyzer, log zerolog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		log:      log.With().Str("handler", "sentiment").Logger(),
	}
}

type sentimentRequest struct {
	Text string `json:"text"`
}

// HandleAnalyze scores the submitted text.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req sentimentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxTextBytes)).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	scores := h.analyzer.Analyze(req.Text)
	h.log.Debug().Int("chars", len(req.Text)).Float64("compound", scores.Compound).Msg("Scored text")

	h.writeJSON(w, http.StatusOK, scores)
}

// RegisterRoutes registers the sentiment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sentiment", h.HandleAnalyze)
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
