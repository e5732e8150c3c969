package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/rag", h.QueryDocuments)
		r.Post("/message", h.SendMessage)
		r.Post("/history", h.SaveHistory)
		r.Get("/sessions", h.ListSessions)
		r.Get("/session/{sessionId}", h.GetSession)
	})
}
