package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)
		r.Get("/info", h.InfoHandler)

		r.Post("/chat", h.ChatHandler)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/active/count", h.ActiveSessionsHandler)
			r.Get("/{sessionID}/history", h.SessionHistoryHandler)
			r.Delete("/{sessionID}", h.DeleteSessionHandler)
		})

		r.Post("/seguimiento/analizar-respuesta", h.AnalyzeFollowUpHandler)
	})

	return r
}
