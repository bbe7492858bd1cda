package tenant

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers tenant administration routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/tenants", func(r chi.Router) {
		r.Get("/", h.List)

		r.Route("/{tenant_id}", func(r chi.Router) {
			r.Post("/initialize", h.Initialize)
			r.Post("/reload", h.Reload)
			r.Post("/save", h.Save)
			r.Get("/stats", h.Stats)
		})
	})

	r.Get("/stats", h.GlobalStats)
}
