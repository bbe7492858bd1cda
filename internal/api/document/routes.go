package document

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers document routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/text", h.IngestText)
		r.Post("/upload", h.Upload)
		r.Get("/search", h.Search)
		r.Get("/history", h.History)
	})
}
