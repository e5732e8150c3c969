package api

import (
	"net/http"
	"time"

	chatapi "github.com/docuchat/chat-backend/internal/api/chat"
	"github.com/docuchat/chat-backend/internal/api/docs"
	"github.com/docuchat/chat-backend/internal/api/middleware"
	speechapi "github.com/docuchat/chat-backend/internal/api/speech"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(chatHandler *chatapi.Handler, speechHandler *speechapi.Handler, jwtSecret string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(90 * time.Second)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(jwtSecret))

		chatapi.RegisterRoutes(r, chatHandler)
		speechapi.RegisterRoutes(r, speechHandler)
	})

	return r
}
