// internal/app/features/events/handler.go
package events

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/app/policy/unitpolicy"
	"github.com/Deepak-cell311/GreenBook/internal/app/store/audit"
	eventstore "github.com/Deepak-cell311/GreenBook/internal/app/store/events"
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

// EventStore is the slice of the event store this feature uses.
// Satisfied by *eventstore.Store.
type EventStore interface {
	Create(ctx context.Context, e models.Event) (models.Event, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
	GetByUnits(ctx context.Context, unitIDs []primitive.ObjectID) ([]models.Event, error)
	GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, upd eventstore.UpdateInfo) error
	SetStep(ctx context.Context, id primitive.ObjectID, step int) error
	SetStepNote(ctx context.Context, id primitive.ObjectID, step int, note models.StepNote) error
	AddParticipants(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) error
	AddParticipatingUnits(ctx context.Context, id primitive.ObjectID, unitIDs []primitive.ObjectID) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// UnitSource resolves a unit for access checks. Satisfied by *unitstore.Store.
type UnitSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Unit, error)
}

// Notifier fans a notification out to a set of users.
// Satisfied by *notificationstore.Store.
type Notifier interface {
	CreateMany(ctx context.Context, userIDs []primitive.ObjectID, n models.Notification) error
}

type Handler struct {
	Events        EventStore
	Units         UnitSource
	Notifications Notifier
	Engine        *access.Engine
	Dir           access.Directory
	AuditLog      *auditlog.Logger
	Log           *zap.Logger
}

func NewHandler(events EventStore, units UnitSource, notifications Notifier, engine *access.Engine, dir access.Directory, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:        events,
		Units:         units,
		Notifications: notifications,
		Engine:        engine,
		Dir:           dir,
		AuditLog:      auditLog,
		Log:           logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /events — events across the caller's accessible units                   |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	unitIDs, err := unitpolicy.AccessibleUnitIDs(ctx, h.Engine, r)
	if err != nil {
		respond.ServerError(w, h.Log, "events: accessible units", err)
		return
	}
	events, err := h.Events.GetByUnits(ctx, unitIDs)
	if err != nil {
		respond.ServerError(w, h.Log, "events: list", err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}

// ServeMine handles GET /events/mine, the caller's own participation list.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.GetByParticipant(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "events: by participant", err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /events                                                                |
 *─────────────────────────────────────────────────────────────────────────────*/

type createRequest struct {
	Title              string     `json:"title"`
	UnitID             string     `json:"unit_id"`
	Step               int        `json:"step"`
	Date               time.Time  `json:"date"`
	IsMultiDayEvent    bool       `json:"is_multi_day_event"`
	EndDate            *time.Time `json:"end_date"`
	Location           string     `json:"location"`
	Objectives         string     `json:"objectives"`
	MissionStatement   string     `json:"mission_statement"`
	ConceptOfOperation string     `json:"concept_of_operation"`
	Resources          string     `json:"resources"`
	EventType          string     `json:"event_type"`
	Participants       []string   `json:"participants"`
	ParticipatingUnits []string   `json:"participating_units"`
	NotifyParticipants bool       `json:"notify_participants"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
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
		respond.ServerError(w, h.Log, "events: load unit", err)
		return
	}
	allowed, err := unitpolicy.CanManageUnit(ctx, h.Engine, h.Dir, r, unit)
	if err != nil {
		respond.ServerError(w, h.Log, "events: manage check", err)
		return
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	participants, ok := parseIDs(w, req.Participants, "participants")
	if !ok {
		return
	}
	participatingUnits, ok := parseIDs(w, req.ParticipatingUnits, "participating_units")
	if !ok {
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	event := models.Event{
		Title:              htmlsanitize.SanitizeStrict(req.Title),
		UnitID:             unitID,
		CreatedBy:          uid,
		Step:               req.Step,
		Date:               req.Date,
		IsMultiDayEvent:    req.IsMultiDayEvent,
		EndDate:            req.EndDate,
		Location:           htmlsanitize.SanitizeStrict(req.Location),
		Objectives:         htmlsanitize.Sanitize(req.Objectives),
		MissionStatement:   htmlsanitize.Sanitize(req.MissionStatement),
		ConceptOfOperation: htmlsanitize.Sanitize(req.ConceptOfOperation),
		Resources:          htmlsanitize.Sanitize(req.Resources),
		EventType:          req.EventType,
		Participants:       participants,
		ParticipatingUnits: participatingUnits,
		NotifyParticipants: req.NotifyParticipants,
	}
	created, err := h.Events.Create(ctx, event)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if created.NotifyParticipants {
		h.notifyParticipants(ctx, created, created.Participants)
	}

	h.AuditLog.AdminAction(ctx, r, audit.EventTrainingCreated, uid, &unitID, map[string]string{
		"event_id": created.ID.Hex(),
		"title":    created.Title,
	})
	respond.JSON(w, http.StatusCreated, created)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /events/{id}                                                            |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadViewable(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, event)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | PUT /events/{id}                                                            |
 *─────────────────────────────────────────────────────────────────────────────*/

type updateRequest struct {
	Title              string `json:"title"`
	Location           string `json:"location"`
	Objectives         string `json:"objectives"`
	MissionStatement   string `json:"mission_statement"`
	ConceptOfOperation string `json:"concept_of_operation"`
	Resources          string `json:"resources"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadManageable(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	upd := eventstore.UpdateInfo{
		Title:              htmlsanitize.SanitizeStrict(req.Title),
		Location:           htmlsanitize.SanitizeStrict(req.Location),
		Objectives:         htmlsanitize.Sanitize(req.Objectives),
		MissionStatement:   htmlsanitize.Sanitize(req.MissionStatement),
		ConceptOfOperation: htmlsanitize.Sanitize(req.ConceptOfOperation),
		Resources:          htmlsanitize.Sanitize(req.Resources),
	}
	if err := h.Events.Update(ctx, event.ID, upd); err != nil {
		respond.ServerError(w, h.Log, "events: update", err)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.AuditLog.AdminAction(ctx, r, audit.EventTrainingUpdated, uid, &event.UnitID, map[string]string{
		"event_id": event.ID.Hex(),
	})

	updated, err := h.Events.GetByID(ctx, event.ID)
	if err != nil {
		respond.ServerError(w, h.Log, "events: reload", err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /events/{id}/step and /events/{id}/step/notes                          |
 *─────────────────────────────────────────────────────────────────────────────*/

type stepRequest struct {
	Step int `json:"step"`
}

func (h *Handler) HandleSetStep(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadManageable(w, r)
	if !ok {
		return
	}
	var req stepRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.SetStep(ctx, event.ID, req.Step); err != nil {
		if errors.Is(err, eventstore.ErrBadStep) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.ServerError(w, h.Log, "events: set step", err)
		return
	}

	// Reaching the AAR step is the cue for participants to write theirs.
	if req.Step == models.StepAAR && event.NotifyParticipants {
		h.notifyAARRequired(ctx, event)
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "step updated"})
}

type stepNoteRequest struct {
	Step  int        `json:"step"`
	Notes string     `json:"notes"`
	Date  *time.Time `json:"date"`
}

func (h *Handler) HandleSetStepNote(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadManageable(w, r)
	if !ok {
		return
	}
	var req stepNoteRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	note := models.StepNote{
		Notes: htmlsanitize.Sanitize(req.Notes),
		Date:  req.Date,
	}
	if err := h.Events.SetStepNote(ctx, event.ID, req.Step, note); err != nil {
		if errors.Is(err, eventstore.ErrBadStep) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.ServerError(w, h.Log, "events: set step note", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "note saved"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /events/{id}/participants and /events/{id}/units                       |
 *─────────────────────────────────────────────────────────────────────────────*/

type participantsRequest struct {
	Participants []string `json:"participants"`
}

func (h *Handler) HandleAddParticipants(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadManageable(w, r)
	if !ok {
		return
	}
	var req participantsRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	ids, ok := parseIDs(w, req.Participants, "participants")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.AddParticipants(ctx, event.ID, ids); err != nil {
		respond.ServerError(w, h.Log, "events: add participants", err)
		return
	}
	if event.NotifyParticipants {
		h.notifyParticipants(ctx, event, ids)
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "participants added"})
}

type unitsRequest struct {
	Units []string `json:"units"`
}

func (h *Handler) HandleAddUnits(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadManageable(w, r)
	if !ok {
		return
	}
	var req unitsRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	ids, ok := parseIDs(w, req.Units, "units")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.AddParticipatingUnits(ctx, event.ID, ids); err != nil {
		respond.ServerError(w, h.Log, "events: add units", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "units added"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | DELETE /events/{id}                                                         |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadManageable(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Events.SoftDelete(ctx, event.ID); err != nil {
		respond.ServerError(w, h.Log, "events: delete", err)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.AuditLog.AdminAction(ctx, r, audit.EventTrainingDeleted, uid, &event.UnitID, map[string]string{
		"event_id": event.ID.Hex(),
	})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | helpers                                                                     |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) notifyParticipants(ctx context.Context, event models.Event, userIDs []primitive.ObjectID) {
	err := h.Notifications.CreateMany(ctx, userIDs, models.Notification{
		Title:             "Added to training event",
		Message:           "You have been added to " + event.Title,
		Type:              models.NotifyEventAdded,
		RelatedEntityID:   &event.ID,
		RelatedEntityType: "event",
	})
	if err != nil {
		h.Log.Error("events: notify participants", zap.Error(err),
			zap.String("event_id", event.ID.Hex()))
	}
}

func (h *Handler) notifyAARRequired(ctx context.Context, event models.Event) {
	err := h.Notifications.CreateMany(ctx, event.Participants, models.Notification{
		Title:             "AAR required",
		Message:           "An after-action review is due for " + event.Title,
		Type:              models.NotifyAARRequired,
		RelatedEntityID:   &event.ID,
		RelatedEntityType: "event",
	})
	if err != nil {
		h.Log.Error("events: notify aar required", zap.Error(err),
			zap.String("event_id", event.ID.Hex()))
	}
}

type policyFunc func(context.Context, *access.Engine, access.Directory, *http.Request, models.Unit) (bool, error)

func (h *Handler) loadWithPolicy(w http.ResponseWriter, r *http.Request, allow policyFunc) (models.Event, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid event id")
		return models.Event{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "event not found")
		return models.Event{}, false
	}
	if err != nil {
		respond.ServerError(w, h.Log, "events: load", err)
		return models.Event{}, false
	}

	unit, err := h.Units.GetByID(ctx, event.UnitID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		respond.ServerError(w, h.Log, "events: load owning unit", err)
		return models.Event{}, false
	}
	allowed, err := allow(ctx, h.Engine, h.Dir, r, unit)
	if err != nil {
		respond.ServerError(w, h.Log, "events: access check", err)
		return models.Event{}, false
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return models.Event{}, false
	}
	return event, true
}

func (h *Handler) loadViewable(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	return h.loadWithPolicy(w, r, unitpolicy.CanViewUnit)
}

func (h *Handler) loadManageable(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	return h.loadWithPolicy(w, r, unitpolicy.CanManageUnit)
}

func parseIDs(w http.ResponseWriter, hexes []string, field string) ([]primitive.ObjectID, bool) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, hex := range hexes {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid id in "+field)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
