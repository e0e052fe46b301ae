package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/aristath/portfolio-tracker/internal/modules/portfolio"
	"github.com/go-chi/chi/v5"
)

// TokenHeader carries the portfolio token on frontend routes.
const TokenHeader = "X-PT-Token"

// RequireToken resolves the X-PT-Token header to an existing portfolio.
// Missing header -> 400, unknown token -> 404.
func (h *Handler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(TokenHeader))
		if token == "" {
			h.writeError(w, http.StatusBadRequest, "missing "+TokenHeader+" header")
			return
		}

		exists, err := h.service.Exists(r.Context(), token)
		if err != nil {
			h.log.Error().Err(err).Msg("Token lookup failed")
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !exists {
			h.writeError(w, http.StatusNotFound, portfolio.ErrPortfolioNotFound.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(portfolio.WithToken(r.Context(), token)))
	})
}

// apiPosition is the position shape the dashboard renders.
type apiPosition struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Qty         float64 `json:"qty"`
	AvgCost     float64 `json:"avgCost"`
	Price       float64 `json:"price"`
	Weight      float64 `json:"weight"`
	MarketValue float64 `json:"marketValue"`
	PnL         float64 `json:"pnl"`
}

func toAPIPosition(p portfolio.EnrichedPosition) apiPosition {
	return apiPosition{
		Symbol:      p.Symbol,
		Name:        p.Name,
		Qty:         p.Qty,
		AvgCost:     p.AvgCost,
		Price:       p.Price,
		Weight:      p.Weight,
		MarketValue: p.MarketValue,
		PnL:         p.PnL,
	}
}

// apiPositionInput accepts the dashboard's camelCase avgCost as well as avg_cost.
type apiPositionInput struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Qty          float64  `json:"qty"`
	AvgCost      *float64 `json:"avgCost"`
	AvgCostSnake *float64 `json:"avg_cost"`
}

func (in apiPositionInput) toInput() portfolio.PositionInput {
	out := portfolio.PositionInput{
		Symbol: strings.TrimSpace(in.Symbol),
		Name:   in.Name,
		Qty:    in.Qty,
	}
	switch {
	case in.AvgCost != nil:
		out.AvgCost = *in.AvgCost
	case in.AvgCostSnake != nil:
		out.AvgCost = *in.AvgCostSnake
	}
	return out
}

// HandleGetOverview returns the dashboard headline value.
func (h *Handler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.GetOverview(r.Context(), h.token(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, overview)
}

// HandleListPositions returns the positions in dashboard form.
func (h *Handler) HandleListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.GetPortfolio(r.Context(), h.token(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	result := make([]apiPosition, 0, len(positions))
	for _, p := range positions {
		result = append(result, toAPIPosition(p))
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleUpsertPosition adds a position or updates the one with the same symbol.
func (h *Handler) HandleUpsertPosition(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var in apiPositionInput
	if err := json.Unmarshal(body, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: expected a position object")
		return
	}

	input := in.toInput()
	if err := h.validate.Struct(input); err != nil {
		h.writeValidationError(w, err)
		return
	}

	pos, err := h.service.UpsertPosition(r.Context(), h.token(r), input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toAPIPosition(*pos))
}

// HandleDeletePosition removes a position by symbol.
func (h *Handler) HandleDeletePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePosition(r.Context(), h.token(r), chi.URLParam(r, "symbol")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGetAllocation returns weight per symbol for the allocation chart.
func (h *Handler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	slices, err := h.service.GetAllocation(r.Context(), h.token(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, slices)
}

// token returns the token stored by RequireToken. Routes mounted without the
// middleware get an empty token, which the service reports as not found.
func (h *Handler) token(r *http.Request) string {
	token, _ := portfolio.TokenFromContext(r.Context())
	return token
}
