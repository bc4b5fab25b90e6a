// internal/app/features/units/handler.go
package units

import (
	"context"
	"errors"
	"net/http"

	"github.com/Deepak-cell311/GreenBook/internal/app/policy/unitpolicy"
	"github.com/Deepak-cell311/GreenBook/internal/app/store/audit"
	unitstore "github.com/Deepak-cell311/GreenBook/internal/app/store/units"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/access"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auditlog"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/authz"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/htmlsanitize"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/respond"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/timeouts"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the units feature.
type Handler struct {
	Units    *unitstore.Store
	Engine   *access.Engine
	Dir      access.Directory
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(units *unitstore.Store, engine *access.Engine, dir access.Directory, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Units:    units,
		Engine:   engine,
		Dir:      dir,
		AuditLog: auditLog,
		Log:      logger,
	}
}

func urlID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /units — everything the caller may access                              |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	units, err := h.Engine.AccessibleUnits(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "units: list accessible", err)
		return
	}
	respond.JSON(w, http.StatusOK, units)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /units                                                                 |
 *─────────────────────────────────────────────────────────────────────────────*/

type createRequest struct {
	Name      string  `json:"name"`
	UnitLevel string  `json:"unit_level"`
	ParentID  *string `json:"parent_id"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !authz.IsGlobalAdmin(r) && !authz.IsLeader(r) {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	var req createRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	unit := models.Unit{
		Name:      htmlsanitize.SanitizeStrict(req.Name),
		UnitLevel: req.UnitLevel,
	}
	if unit.Name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if req.ParentID != nil {
		parentID, err := primitive.ObjectIDFromHex(*req.ParentID)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid parent_id")
			return
		}
		parent, err := h.Units.GetByID(ctx, parentID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusBadRequest, "parent unit not found")
			return
		}
		if err != nil {
			respond.ServerError(w, h.Log, "units: load parent", err)
			return
		}
		// Only leaders within scope of the parent may hang subunits off it.
		ok, err := unitpolicy.CanManageUnit(ctx, h.Engine, h.Dir, r, parent)
		if err != nil {
			respond.ServerError(w, h.Log, "units: manage check", err)
			return
		}
		if !ok {
			respond.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		unit.ParentID = &parentID
	} else if !authz.IsGlobalAdmin(r) {
		// Top-level units are an admin concern.
		respond.Error(w, http.StatusForbidden, "only the administrator can create top-level units")
		return
	}

	created, err := h.Units.Create(ctx, unit)
	switch {
	case errors.Is(err, unitstore.ErrBadLevel), errors.Is(err, unitstore.ErrInvalidParent):
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respond.ServerError(w, h.Log, "units: create", err)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.AuditLog.AdminAction(ctx, r, audit.EventUnitCreated, uid, &created.ID, map[string]string{
		"name":       created.Name,
		"unit_level": created.UnitLevel,
	})
	respond.JSON(w, http.StatusCreated, created)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /units/{id}                                                             |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid unit id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	unit, err := h.Units.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "unit not found")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "units: load", err)
		return
	}

	allowed, err := unitpolicy.CanViewUnit(ctx, h.Engine, h.Dir, r, unit)
	if err != nil {
		respond.ServerError(w, h.Log, "units: view check", err)
		return
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}
	respond.JSON(w, http.StatusOK, unit)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /units/{id}/subunits, GET /units/{id}/members                           |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSubunits(w http.ResponseWriter, r *http.Request) {
	unit, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	subs, err := h.Units.GetSubunits(ctx, unit.ID)
	if err != nil {
		respond.ServerError(w, h.Log, "units: subunits", err)
		return
	}
	respond.JSON(w, http.StatusOK, subs)
}

func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	unit, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := h.Dir.GetUsersByUnit(ctx, unit.ID)
	if err != nil {
		respond.ServerError(w, h.Log, "units: members", err)
		return
	}
	respond.JSON(w, http.StatusOK, members)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | PUT /units/{id} — rename                                                    |
 *─────────────────────────────────────────────────────────────────────────────*/

type updateRequest struct {
	Name string `json:"name"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	unit, ok := h.loadManageable(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Units.UpdateInfo(ctx, unit.ID, htmlsanitize.SanitizeStrict(req.Name)); err != nil {
		respond.ServerError(w, h.Log, "units: rename", err)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.AuditLog.AdminAction(ctx, r, audit.EventUnitUpdated, uid, &unit.ID, map[string]string{"name": req.Name})

	updated, err := h.Units.GetByID(ctx, unit.ID)
	if err != nil {
		respond.ServerError(w, h.Log, "units: reload", err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /units/{id}/reparent                                                   |
 *─────────────────────────────────────────────────────────────────────────────*/

type reparentRequest struct {
	ParentID *string `json:"parent_id"` // null moves the unit to the top level
}

func (h *Handler) HandleReparent(w http.ResponseWriter, r *http.Request) {
	unit, ok := h.loadManageable(w, r)
	if !ok {
		return
	}
	var req reparentRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var parentID *primitive.ObjectID
	if req.ParentID != nil {
		pid, err := primitive.ObjectIDFromHex(*req.ParentID)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid parent_id")
			return
		}
		parentID = &pid
	} else if !authz.IsGlobalAdmin(r) {
		respond.Error(w, http.StatusForbidden, "only the administrator can detach units from the hierarchy")
		return
	}

	err := h.Units.Reparent(ctx, unit.ID, parentID)
	switch {
	case errors.Is(err, unitstore.ErrInvalidParent), errors.Is(err, unitstore.ErrParentIsDescendant):
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		respond.Error(w, http.StatusNotFound, "unit not found")
		return
	case err != nil:
		respond.ServerError(w, h.Log, "units: reparent", err)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	details := map[string]string{}
	if parentID != nil {
		details["parent_id"] = parentID.Hex()
	}
	h.AuditLog.AdminAction(ctx, r, audit.EventUnitReparented, uid, &unit.ID, details)
	respond.JSON(w, http.StatusOK, map[string]string{"status": "reparented"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | DELETE /units/{id}                                                          |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	unit, ok := h.loadManageable(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	subs, err := h.Units.GetSubunits(ctx, unit.ID)
	if err != nil {
		respond.ServerError(w, h.Log, "units: check subunits", err)
		return
	}
	if len(subs) > 0 {
		respond.Error(w, http.StatusConflict, "unit still has subunits; move or delete them first")
		return
	}

	if err := h.Units.SoftDelete(ctx, unit.ID); err != nil {
		respond.ServerError(w, h.Log, "units: delete", err)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.AuditLog.AdminAction(ctx, r, audit.EventUnitDeleted, uid, &unit.ID, map[string]string{"name": unit.Name})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /units/referral/{code}                                                  |
 *─────────────────────────────────────────────────────────────────────────────*/

type referralResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitLevel string `json:"unit_level"`
}

// ServeReferralLookup resolves a join code to a unit. It deliberately
// returns a trimmed view; join codes circulate outside the chain of
// command.
func (h *Handler) ServeReferralLookup(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		respond.Error(w, http.StatusBadRequest, "missing referral code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	unit, err := h.Units.GetByReferralCode(ctx, code)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "unknown referral code")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "units: referral lookup", err)
		return
	}
	respond.JSON(w, http.StatusOK, referralResponse{
		ID:        unit.ID.Hex(),
		Name:      unit.Name,
		UnitLevel: unit.UnitLevel,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | helpers                                                                     |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) loadViewable(w http.ResponseWriter, r *http.Request) (models.Unit, bool) {
	return h.loadWithPolicy(w, r, unitpolicy.CanViewUnit)
}

func (h *Handler) loadManageable(w http.ResponseWriter, r *http.Request) (models.Unit, bool) {
	return h.loadWithPolicy(w, r, unitpolicy.CanManageUnit)
}

type policyFunc func(context.Context, *access.Engine, access.Directory, *http.Request, models.Unit) (bool, error)

func (h *Handler) loadWithPolicy(w http.ResponseWriter, r *http.Request, allow policyFunc) (models.Unit, bool) {
	id, ok := urlID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid unit id")
		return models.Unit{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	unit, err := h.Units.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "unit not found")
		return models.Unit{}, false
	}
	if err != nil {
		respond.ServerError(w, h.Log, "units: load", err)
		return models.Unit{}, false
	}

	allowed, err := allow(ctx, h.Engine, h.Dir, r, unit)
	if err != nil {
		respond.ServerError(w, h.Log, "units: policy check", err)
		return models.Unit{}, false
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return models.Unit{}, false
	}
	return unit, true
}
