// Package handlers provides HTTP handlers for portfolio management.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/portfolio-tracker/internal/modules/portfolio"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies for position writes.
const maxBodyBytes = 1 << 20

// Handler handles portfolio HTTP requests
type Handler struct {
	service  *portfolio.PortfolioService
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.PortfolioService, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: newValidator(),
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

type createPortfolioResponse struct {
	Token     string                       `json:"token"`
	CreatedAt string                       `json:"created_at"`
	Positions []portfolio.EnrichedPosition `json:"positions"`
}

// HandleCreatePortfolio creates a portfolio from an optional array of positions.
// An empty or null body creates an empty portfolio.
func (h *Handler) HandleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	inputs, ok := h.decodePositions(w, r, true)
	if !ok {
		return
	}

	p, positions, err := h.service.CreatePortfolio(r.Context(), inputs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, createPortfolioResponse{
		Token:     p.Token,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		Positions: positions,
	})
}

// HandleReplacePositions replaces every position of the portfolio.
func (h *Handler) HandleReplacePositions(w http.ResponseWriter, r *http.Request) {
	inputs, ok := h.decodePositions(w, r, false)
	if !ok {
		return
	}

	positions, err := h.service.ReplacePositions(r.Context(), chi.URLParam(r, "token"), inputs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, positions)
}

// HandleGetPortfolio returns the portfolio's priced positions.
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.GetPortfolio(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, positions)
}

// HandleGetSummary returns portfolio totals and P&L.
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// decodePositions reads a JSON array of positions and validates it.
// It writes the error response itself and reports whether decoding succeeded.
func (h *Handler) decodePositions(w http.ResponseWriter, r *http.Request, allowEmpty bool) ([]portfolio.PositionInput, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		if allowEmpty {
			return nil, true
		}
		h.writeError(w, http.StatusBadRequest, "request body must be a JSON array of positions")
		return nil, false
	}

	var inputs []portfolio.PositionInput
	if err := json.Unmarshal(body, &inputs); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: expected a JSON array of positions")
		return nil, false
	}
	for i := range inputs {
		inputs[i].Symbol = strings.TrimSpace(inputs[i].Symbol)
	}

	req := positionsRequest{Positions: inputs}
	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return nil, false
	}

	return inputs, true
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var dup *portfolio.DuplicateSymbolError
	switch {
	case errors.Is(err, portfolio.ErrPortfolioNotFound):
		h.writeError(w, http.StatusNotFound, portfolio.ErrPortfolioNotFound.Error())
	case errors.Is(err, portfolio.ErrPositionNotFound):
		h.writeError(w, http.StatusNotFound, portfolio.ErrPositionNotFound.Error())
	case errors.As(err, &dup):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"symbol": fmt.Sprintf("%s appears more than once", dup.Symbol)},
		})
	default:
		h.log.Error().Err(err).Msg("Portfolio request failed")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
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

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
