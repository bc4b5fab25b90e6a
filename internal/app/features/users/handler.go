// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Deepak-cell311/GreenBook/internal/app/policy/unitpolicy"
	assignmentstore "github.com/Deepak-cell311/GreenBook/internal/app/store/assignments"
	"github.com/Deepak-cell311/GreenBook/internal/app/store/audit"
	unitstore "github.com/Deepak-cell311/GreenBook/internal/app/store/units"
	userstore "github.com/Deepak-cell311/GreenBook/internal/app/store/users"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/access"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auditlog"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/authz"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/htmlsanitize"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/respond"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/timeouts"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the users feature.
type Handler struct {
	Users       *userstore.Store
	Units       *unitstore.Store
	Assignments *assignmentstore.Store
	Engine      *access.Engine
	Dir         access.Directory
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

func NewHandler(users *userstore.Store, units *unitstore.Store, assignments *assignmentstore.Store, engine *access.Engine, dir access.Directory, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       users,
		Units:       units,
		Assignments: assignments,
		Engine:      engine,
		Dir:         dir,
		AuditLog:    auditLog,
		Log:         logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /users — register via referral code                                    |
 *─────────────────────────────────────────────────────────────────────────────*/

type registerRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	Rank         string `json:"rank"`
	ReferralCode string `json:"referral_code"`
}

// HandleRegister creates a Soldier account in the unit named by the
// referral code. Leadership roles are granted later through assignments
// or an admin role change.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if strings.TrimSpace(req.ReferralCode) == "" {
		respond.Error(w, http.StatusBadRequest, "referral_code is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	unit, err := h.Units.GetByReferralCode(ctx, strings.TrimSpace(req.ReferralCode))
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusBadRequest, "unknown referral code")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "users: referral lookup", err)
		return
	}

	user := models.User{
		Username: strings.TrimSpace(req.Username),
		Name:     htmlsanitize.SanitizeStrict(req.Name),
		Rank:     htmlsanitize.SanitizeStrict(req.Rank),
		Role:     hierarchy.RoleSoldier,
		UnitID:   unit.ID,
	}
	created, err := h.Users.Create(ctx, user, req.Password)
	if errors.Is(err, userstore.ErrDuplicateUsername) {
		respond.Error(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	// Open the primary assignment that anchors the user to their unit.
	if _, err := h.Assignments.Create(ctx, models.Assignment{
		UserID:         created.ID,
		UnitID:         unit.ID,
		AssignmentType: models.AssignmentPrimary,
	}); err != nil {
		h.Log.Error("users: open primary assignment", zap.Error(err),
			zap.String("user_id", created.ID.Hex()))
	}

	h.Log.Info("user registered",
		zap.String("user_id", created.ID.Hex()),
		zap.String("unit_id", unit.ID.Hex()))
	respond.JSON(w, http.StatusCreated, created)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /users — everyone in the caller's accessible units                      |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Engine.AccessibleUsers(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "users: list accessible", err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /users/{id}                                                             |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	target, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, target)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | PUT /users/{id} — profile                                                   |
 *─────────────────────────────────────────────────────────────────────────────*/

type profileRequest struct {
	Name string `json:"name"`
	Rank string `json:"rank"`
	Bio  string `json:"bio"`
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	target, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	_, _, uid, _ := authz.UserCtx(r)
	if uid != target.ID && !authz.IsGlobalAdmin(r) {
		respond.Error(w, http.StatusForbidden, "you can only edit your own profile")
		return
	}

	var req profileRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	upd := userstore.ProfileUpdate{
		Name: htmlsanitize.SanitizeStrict(req.Name),
		Rank: htmlsanitize.SanitizeStrict(req.Rank),
		Bio:  htmlsanitize.Sanitize(req.Bio),
	}
	if err := h.Users.UpdateProfile(ctx, target.ID, upd); err != nil {
		respond.ServerError(w, h.Log, "users: update profile", err)
		return
	}

	updated, err := h.Users.GetByID(ctx, target.ID)
	if err != nil {
		respond.ServerError(w, h.Log, "users: reload", err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /users/{id}/role                                                       |
 *─────────────────────────────────────────────────────────────────────────────*/

type roleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole changes a user's military role. Only the global admin may
// grant or revoke roles; the admin role itself stays bound to the
// reserved admin account.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	if !authz.IsGlobalAdmin(r) {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}
	target, ok := h.loadViewable(w, r)
	if !ok {
		return
	}

	var req roleRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	if req.Role == hierarchy.RoleAdmin {
		respond.Error(w, http.StatusBadRequest, "the admin role cannot be granted")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetRole(ctx, target.ID, req.Role); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.AuditLog.AdminAction(ctx, r, audit.EventUserUpdated, uid, nil, map[string]string{
		"user_id": target.ID.Hex(),
		"role":    req.Role,
	})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "role updated"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /users/{id}/password                                                   |
 *─────────────────────────────────────────────────────────────────────────────*/

type passwordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	target, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	_, _, uid, _ := authz.UserCtx(r)
	admin := authz.IsGlobalAdmin(r)
	if uid != target.ID && !admin {
		respond.Error(w, http.StatusForbidden, "you can only change your own password")
		return
	}

	var req passwordRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// The admin may reset without the current password; users must prove it.
	if !admin && !h.Users.VerifyPassword(target, req.Current) {
		respond.Error(w, http.StatusForbidden, "current password is incorrect")
		return
	}
	if err := h.Users.SetPassword(ctx, target.ID, req.New); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.AuditLog.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordChanged,
		UserID:    &target.ID,
		ActorID:   &uid,
		IP:        r.RemoteAddr,
		Success:   true,
	})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | DELETE /users/{id}                                                          |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !authz.IsGlobalAdmin(r) {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Users.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		respond.ServerError(w, h.Log, "users: delete", err)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.AuditLog.AdminAction(ctx, r, audit.EventUserDeleted, uid, nil, map[string]string{"user_id": id.Hex()})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | Assignments                                                                 |
 *─────────────────────────────────────────────────────────────────────────────*/

// ServeAssignments handles GET /users/{id}/assignments.
func (h *Handler) ServeAssignments(w http.ResponseWriter, r *http.Request) {
	target, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	history, err := h.Assignments.GetHistoryByUser(ctx, target.ID)
	if err != nil {
		respond.ServerError(w, h.Log, "users: assignment history", err)
		return
	}
	respond.JSON(w, http.StatusOK, history)
}

type assignmentRequest struct {
	UnitID         string `json:"unit_id"`
	AssignmentType string `json:"assignment_type"`
	LeadershipRole string `json:"leadership_role"`
}

// HandleCreateAssignment handles POST /users/{id}/assignments. The caller
// must be able to manage the destination unit.
func (h *Handler) HandleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	target, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	var req assignmentRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	unitID, err := primitive.ObjectIDFromHex(req.UnitID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid unit_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	unit, err := h.Units.GetByID(ctx, unitID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "unit not found")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "users: load unit", err)
		return
	}
	allowed, err := unitpolicy.CanManageUnit(ctx, h.Engine, h.Dir, r, unit)
	if err != nil {
		respond.ServerError(w, h.Log, "users: manage check", err)
		return
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	created, err := h.Assignments.Create(ctx, models.Assignment{
		UserID:         target.ID,
		UnitID:         unitID,
		AssignmentType: req.AssignmentType,
		LeadershipRole: req.LeadershipRole,
		AssignedBy:     &uid,
	})
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventAssignmentOpened, uid, &unitID, map[string]string{
		"user_id":         target.ID.Hex(),
		"assignment_type": created.AssignmentType,
	})
	respond.JSON(w, http.StatusCreated, created)
}

// HandleEndAssignment handles POST /assignments/{id}/end.
func (h *Handler) HandleEndAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid assignment id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	a, err := h.Assignments.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "assignment not found")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "users: load assignment", err)
		return
	}

	unit, err := h.Units.GetByID(ctx, a.UnitID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		respond.ServerError(w, h.Log, "users: load assignment unit", err)
		return
	}
	allowed, err := unitpolicy.CanManageUnit(ctx, h.Engine, h.Dir, r, unit)
	if err != nil {
		respond.ServerError(w, h.Log, "users: manage check", err)
		return
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.Assignments.End(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusConflict, "assignment is already closed")
			return
		}
		respond.ServerError(w, h.Log, "users: end assignment", err)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.AuditLog.AdminAction(ctx, r, audit.EventAssignmentEnded, uid, &a.UnitID, map[string]string{
		"assignment_id": id.Hex(),
		"user_id":       a.UserID.Hex(),
	})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | helpers                                                                     |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) loadViewable(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return models.User{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	target, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "user not found")
		return models.User{}, false
	}
	if err != nil {
		respond.ServerError(w, h.Log, "users: load", err)
		return models.User{}, false
	}

	allowed, err := unitpolicy.CanViewUser(ctx, h.Engine, h.Dir, r, target)
	if err != nil {
		respond.ServerError(w, h.Log, "users: view check", err)
		return models.User{}, false
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return models.User{}, false
	}
	return target, true
}
