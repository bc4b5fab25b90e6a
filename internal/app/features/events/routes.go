// internal/app/features/events/routes.go
package events

import (
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/mine", h.ServeMine)
	r.Get("/{id}", h.ServeView)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/step", h.HandleSetStep)
	r.Post("/{id}/step/notes", h.HandleSetStepNote)
	r.Post("/{id}/participants", h.HandleAddParticipants)
	r.Post("/{id}/units", h.HandleAddUnits)

	return r
}
