// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/unread", h.ServeUnreadCount)
	r.Post("/read-all", h.HandleMarkAllRead)
	r.Post("/{id}/read", h.HandleMarkRead)

	return r
}
