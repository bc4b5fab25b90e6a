package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/Deepak-cell311/GreenBook/internal/app/store/users"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auditlog"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/ratelimit"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/respond"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Limiter  *ratelimit.LoginLimiter
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Limiter:  limiter,
		AuditLog: audit,
		Log:      logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Rank     string `json:"rank"`
	Role     string `json:"role"`
	UnitID   string `json:"unit_id"`
}

// HandleLogin handles POST /login. Wrong username and wrong password both
// yield the same 401 body so the endpoint cannot be used to probe for
// accounts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if h.Limiter != nil {
		if allowed, reason := h.Limiter.Check(r, req.Username); !allowed {
			respond.Error(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, req.Username)
		respond.Error(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "login: find user", err)
		return
	}

	if !h.Users.VerifyPassword(u, req.Password) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.Username)
		respond.Error(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	sessionUser := auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		UnitID:   u.UnitID.Hex(),
	}
	if err := auth.SignIn(w, r, sessionUser); err != nil {
		respond.ServerError(w, h.Log, "login: save session", err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetUsername(u.Username)
	}

	unitID := u.UnitID
	h.AuditLog.LoginSuccess(ctx, r, u.ID, &unitID, u.Username)
	h.Log.Info("user logged in",
		zap.String("user_id", u.ID.Hex()),
		zap.String("username", u.Username))

	respond.JSON(w, http.StatusOK, loginResponse{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.Name,
		Rank:     u.Rank,
		Role:     u.Role,
		UnitID:   u.UnitID.Hex(),
	})
}
