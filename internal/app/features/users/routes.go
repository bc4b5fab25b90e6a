// internal/app/features/users/routes.go
package users

import (
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Registration is the one open endpoint; joining requires a referral
	// code handed out by unit leadership.
	r.Post("/", h.HandleRegister)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeView)
		pr.Put("/{id}", h.HandleUpdateProfile)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/role", h.HandleSetRole)
		pr.Post("/{id}/password", h.HandleChangePassword)
		pr.Get("/{id}/assignments", h.ServeAssignments)
		pr.Post("/{id}/assignments", h.HandleCreateAssignment)
	})

	return r
}

// AssignmentRoutes mounts the assignment-scoped endpoints that are not
// addressed through a user.
func AssignmentRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/{id}/end", h.HandleEndAssignment)
	return r
}
