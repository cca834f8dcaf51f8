package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Praveenitis/CollabIDE/internal/api"
)

func New(h *api.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", h.Health)

	r.Get("/api/sessions", h.ListSessions)
	r.Post("/api/sessions", h.CreateSession)
	r.Get("/api/sessions/{id}", h.GetSession)

	r.Get("/ws", h.CollabWS)

	return r
}
