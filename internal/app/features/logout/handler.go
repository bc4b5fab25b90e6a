package logout

import (
	"net/http"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/auditlog"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/authz"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/respond"
	"go.uber.org/zap"
)

type Handler struct {
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{AuditLog: audit, Log: logger}
}

// HandleLogout handles POST /logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, _, uid, ok := authz.UserCtx(r); ok {
		h.AuditLog.Logout(r.Context(), r, uid)
	}
	if err := auth.SignOut(w, r); err != nil {
		respond.ServerError(w, h.Log, "logout: clear session", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
