// internal/app/features/analysis/routes.go
package analysis

import (
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/unit/{id}", h.ServeUnitAnalysis)
	r.Get("/event/{id}", h.ServeEventAnalysis)
	r.Post("/prompt", h.HandlePromptAnalysis)
	r.Post("/custom", h.HandleCustomAnalysis)

	return r
}
