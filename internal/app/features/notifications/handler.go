// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	notificationstore "github.com/Deepak-cell311/GreenBook/internal/app/store/notifications"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/authz"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/respond"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

func NewHandler(notifications *notificationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Notifications: notifications, Log: logger}
}

// ServeList handles GET /notifications?limit=n.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			respond.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Notifications.GetByUser(ctx, uid, limit)
	if err != nil {
		respond.ServerError(w, h.Log, "notifications: list", err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeUnreadCount handles GET /notifications/unread.
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Notifications.CountUnread(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "notifications: unread count", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"unread": count})
}

// HandleMarkRead handles POST /notifications/{id}/read. The update is
// scoped to the caller, so one user cannot mark another's notifications.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		respond.ServerError(w, h.Log, "notifications: mark read", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// HandleMarkAllRead handles POST /notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Notifications.MarkAllRead(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "notifications: mark all read", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
