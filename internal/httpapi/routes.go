package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DoyleJ11/hots-draft-backend/internal/metrics"
	"github.com/DoyleJ11/hots-draft-backend/internal/ws"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Public routes
	r.With(h.rateLimit).Post("/drafts", h.CreateDraft)
	r.Get("/drafts", h.ListDrafts)
	r.Get("/drafts/{code}", h.GetDraft)
	r.Get("/drafts/{code}/transcript", h.GetTranscript)
	r.Delete("/drafts/{code}", h.StopDraft)
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h.hub, h.logger))
	r.Handle("/metrics", metrics.Handler())
	return r
}
