// internal/app/features/units/routes.go
package units

import (
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Referral lookup is usable before sign-in (it backs the join flow).
	r.Get("/referral/{code}", h.ServeReferralLookup)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeView)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/reparent", h.HandleReparent)
		pr.Get("/{id}/subunits", h.ServeSubunits)
		pr.Get("/{id}/members", h.ServeMembers)
	})

	return r
}
