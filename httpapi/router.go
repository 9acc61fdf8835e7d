package httpapi

import (
	"log/slog"
	"net/http"

	"collab-chat/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the chat facade under /api.
func NewRouter(chat services.IChatService, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	handler := NewHandler(chat, log)
	r.Route("/api", handler.RegisterRoutes)

	return r
}
