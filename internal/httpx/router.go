package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/statesaga/internal/httpx/middlewares"
)

// NewRouter exposes the event buffer and the state tree for inspection.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.Trace)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)
	r.Route("/events", func(r chi.Router) {
		r.Get("/", handler.ListEvents)
		r.Post("/flush", handler.FlushEvents)
		r.Get("/recent", handler.RecentEvents)
	})
	r.Get("/state", handler.GetState)
	r.Get("/state/{module}", handler.GetModuleState)
	r.Post("/history", handler.PushHistory)
	return r
}
