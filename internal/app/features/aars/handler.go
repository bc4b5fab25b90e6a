// internal/app/features/aars/handler.go
package aars

import (
	"context"
	"errors"
	"net/http"

	"github.com/Deepak-cell311/GreenBook/internal/app/policy/unitpolicy"
	aarstore "github.com/Deepak-cell311/GreenBook/internal/app/store/aars"
	"github.com/Deepak-cell311/GreenBook/internal/app/store/audit"
	eventstore "github.com/Deepak-cell311/GreenBook/internal/app/store/events"
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

type Handler struct {
	AARs     *aarstore.Store
	Events   *eventstore.Store
	Units    *unitstore.Store
	Engine   *access.Engine
	Dir      access.Directory
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(aars *aarstore.Store, events *eventstore.Store, units *unitstore.Store, engine *access.Engine, dir access.Directory, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		AARs:     aars,
		Events:   events,
		Units:    units,
		Engine:   engine,
		Dir:      dir,
		AuditLog: auditLog,
		Log:      logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /aars                                                                  |
 *─────────────────────────────────────────────────────────────────────────────*/

type itemRequest struct {
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

type createRequest struct {
	EventID      string        `json:"event_id"`
	SustainItems []itemRequest `json:"sustain_items"`
	ImproveItems []itemRequest `json:"improve_items"`
	ActionItems  []itemRequest `json:"action_items"`
}

// HandleCreate files an AAR against an event. Any participant of an
// accessible unit may file one; the AAR is stamped with the author's
// home unit, rank, and the unit's level for later analysis.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	eventID, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid event_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	event, err := h.Events.GetByID(ctx, eventID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "aars: load event", err)
		return
	}
	eventUnit, err := h.Units.GetByID(ctx, event.UnitID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		respond.ServerError(w, h.Log, "aars: load event unit", err)
		return
	}
	allowed, err := unitpolicy.CanViewUnit(ctx, h.Engine, h.Dir, r, eventUnit)
	if err != nil {
		respond.ServerError(w, h.Log, "aars: access check", err)
		return
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	author, err := h.Dir.GetUser(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "aars: load author", err)
		return
	}
	authorUnit, err := h.Units.GetByID(ctx, author.UnitID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		respond.ServerError(w, h.Log, "aars: load author unit", err)
		return
	}

	aar := models.AAR{
		EventID:      eventID,
		UnitID:       author.UnitID,
		CreatedBy:    uid,
		SustainItems: buildItems(req.SustainItems, author.Rank, authorUnit.UnitLevel),
		ImproveItems: buildItems(req.ImproveItems, author.Rank, authorUnit.UnitLevel),
		ActionItems:  buildItems(req.ActionItems, author.Rank, authorUnit.UnitLevel),
	}
	created, err := h.AARs.Create(ctx, aar)
	if errors.Is(err, aarstore.ErrEventNotFound) {
		respond.Error(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventAARCreated, uid, &author.UnitID, map[string]string{
		"aar_id":   created.ID.Hex(),
		"event_id": eventID.Hex(),
	})
	respond.JSON(w, http.StatusCreated, created)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | reads                                                                       |
 *─────────────────────────────────────────────────────────────────────────────*/

// ServeList handles GET /aars, the feed across the caller's accessible units.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	unitIDs, err := unitpolicy.AccessibleUnitIDs(ctx, h.Engine, r)
	if err != nil {
		respond.ServerError(w, h.Log, "aars: accessible units", err)
		return
	}
	aars, err := h.AARs.GetByUnits(ctx, unitIDs)
	if err != nil {
		respond.ServerError(w, h.Log, "aars: list", err)
		return
	}
	respond.JSON(w, http.StatusOK, aars)
}

// ServeMine handles GET /aars/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	aars, err := h.AARs.GetByAuthor(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "aars: by author", err)
		return
	}
	respond.JSON(w, http.StatusOK, aars)
}

// ServeView handles GET /aars/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	aar, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, aar)
}

// ServeByEvent handles GET /aars/event/{id}.
func (h *Handler) ServeByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid event id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	event, err := h.Events.GetByID(ctx, eventID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "aars: load event", err)
		return
	}
	if !h.allowUnitView(ctx, w, r, event.UnitID) {
		return
	}

	aars, err := h.AARs.GetByEvent(ctx, eventID)
	if err != nil {
		respond.ServerError(w, h.Log, "aars: by event", err)
		return
	}
	respond.JSON(w, http.StatusOK, aars)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | DELETE /aars/{id}                                                           |
 *─────────────────────────────────────────────────────────────────────────────*/

// HandleDelete removes an AAR. The author may delete their own; unit
// leadership may delete any AAR in their scope.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	aar, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	_, _, uid, _ := authz.UserCtx(r)
	if uid != aar.CreatedBy && !authz.IsGlobalAdmin(r) && !authz.IsLeader(r) {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.AARs.SoftDelete(ctx, aar.ID); err != nil {
		respond.ServerError(w, h.Log, "aars: delete", err)
		return
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventAARDeleted, uid, &aar.UnitID, map[string]string{
		"aar_id": aar.ID.Hex(),
	})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | helpers                                                                     |
 *─────────────────────────────────────────────────────────────────────────────*/

func buildItems(reqs []itemRequest, rank, unitLevel string) []models.AARItem {
	items := make([]models.AARItem, 0, len(reqs))
	for _, req := range reqs {
		text := htmlsanitize.Sanitize(req.Text)
		if text == "" {
			continue
		}
		items = append(items, models.AARItem{
			Text:       text,
			AuthorRank: rank,
			UnitLevel:  unitLevel,
			Tags:       req.Tags,
		})
	}
	return items
}

func (h *Handler) loadViewable(w http.ResponseWriter, r *http.Request) (models.AAR, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid aar id")
		return models.AAR{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	aar, err := h.AARs.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "aar not found")
		return models.AAR{}, false
	}
	if err != nil {
		respond.ServerError(w, h.Log, "aars: load", err)
		return models.AAR{}, false
	}

	// Authors always see their own AARs even after reassignment.
	if _, _, uid, ok := authz.UserCtx(r); ok && uid == aar.CreatedBy {
		return aar, true
	}
	if !h.allowUnitView(ctx, w, r, aar.UnitID) {
		return models.AAR{}, false
	}
	return aar, true
}

func (h *Handler) allowUnitView(ctx context.Context, w http.ResponseWriter, r *http.Request, unitID primitive.ObjectID) bool {
	unit, err := h.Units.GetByID(ctx, unitID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		respond.ServerError(w, h.Log, "aars: load unit", err)
		return false
	}
	allowed, err := unitpolicy.CanViewUnit(ctx, h.Engine, h.Dir, r, unit)
	if err != nil {
		respond.ServerError(w, h.Log, "aars: access check", err)
		return false
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}
