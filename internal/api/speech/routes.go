package speech

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers speech routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/speech", func(r chi.Router) {
		r.Post("/transcribe", h.Transcribe)
	})
}
