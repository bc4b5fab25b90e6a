// internal/app/features/aars/routes.go
package aars

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
	r.Get("/event/{id}", h.ServeByEvent)
	r.Get("/{id}", h.ServeView)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
