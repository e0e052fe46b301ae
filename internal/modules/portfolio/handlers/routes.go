package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the token-in-path portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Post("/", h.HandleCreatePortfolio)
		r.Route("/{token}", func(r chi.Router) {
			r.Get("/", h.HandleGetPortfolio)
			r.Put("/", h.HandleReplacePositions)
			r.Get("/summary", h.HandleGetSummary)
		})
	})
}

// RegisterAPIRoutes registers the dashboard routes. The caller mounts them
// behind RequireToken.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/portfolio", h.HandleGetOverview)
	r.Route("/positions", func(r chi.Router) {
		r.Get("/", h.HandleListPositions)
		r.Post("/", h.HandleUpsertPosition)
		r.Delete("/{symbol}", h.HandleDeletePosition)
	})
	r.Get("/allocation", h.HandleGetAllocation)
}
