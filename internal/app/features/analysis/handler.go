// internal/app/features/analysis/handler.go
package analysis

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/app/policy/unitpolicy"
	"github.com/Deepak-cell311/GreenBook/internal/app/store/audit"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/access"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auditlog"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/authz"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/respond"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/timeouts"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Analysis providers.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

// AARSource feeds review data into the analyzers. Satisfied by the AAR store.
type AARSource interface {
	GetByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.AAR, error)
	GetByUnits(ctx context.Context, unitIDs []primitive.ObjectID) ([]models.AAR, error)
}

// EventSource resolves events for scoping and for custom analysis context.
type EventSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
	GetByUnits(ctx context.Context, unitIDs []primitive.ObjectID) ([]models.Event, error)
}

// UnitSource resolves units for access checks.
type UnitSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Unit, error)
}

// LocalAnalyzer is the built-in keyword heuristic.
type LocalAnalyzer interface {
	Analyze(aars []models.AAR) models.AnalysisResult
}

// RemoteAnalyzer is the external AI service. It degrades gracefully when
// unconfigured rather than erroring, so callers never branch on Enabled.
type RemoteAnalyzer interface {
	Enabled() bool
	GenerateAnalysis(ctx context.Context, aars []models.AAR) models.AnalysisResult
	GeneratePromptAnalysis(ctx context.Context, aars []models.AAR, prompt string) models.AnalysisResult
	GenerateCustomAnalysis(ctx context.Context, aars []models.AAR, events []models.Event, userPrompt string) string
}

type Handler struct {
	AARs     AARSource
	Events   EventSource
	Units    UnitSource
	Engine   *access.Engine
	Dir      access.Directory
	Local    LocalAnalyzer
	Remote   RemoteAnalyzer
	Provider string
	Timeout  time.Duration
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /analysis/unit/{id}                                                     |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUnitAnalysis(w http.ResponseWriter, r *http.Request) {
	unitID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid unit id")
		return
	}

	ctx, cancel := h.analysisContext(r)
	defer cancel()

	if !h.allowUnit(ctx, w, r, unitID) {
		return
	}
	aars, err := h.AARs.GetByUnits(ctx, []primitive.ObjectID{unitID})
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: load unit aars", err)
		return
	}

	result := h.analyze(ctx, aars)
	h.auditRequest(ctx, r, &unitID, map[string]string{"scope": "unit", "unit_id": unitID.Hex()})
	respond.JSON(w, http.StatusOK, result)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | GET /analysis/event/{id}                                                    |
 *─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEventAnalysis(w http.ResponseWriter, r *http.Request) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid event id")
		return
	}

	ctx, cancel := h.analysisContext(r)
	defer cancel()

	event, err := h.Events.GetByID(ctx, eventID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: load event", err)
		return
	}
	if !h.allowUnit(ctx, w, r, event.UnitID) {
		return
	}

	aars, err := h.AARs.GetByEvent(ctx, eventID)
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: load event aars", err)
		return
	}

	result := h.analyze(ctx, aars)
	h.auditRequest(ctx, r, &event.UnitID, map[string]string{"scope": "event", "event_id": eventID.Hex()})
	respond.JSON(w, http.StatusOK, result)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /analysis/prompt                                                       |
 *─────────────────────────────────────────────────────────────────────────────*/

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// HandlePromptAnalysis runs the AI analyzer over the caller's accessible
// AARs with a steering prompt. It always goes to the remote service; the
// service reports its own unconfigured state in the result.
func (h *Handler) HandlePromptAnalysis(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	ctx, cancel := h.analysisContext(r)
	defer cancel()

	aars, ok := h.accessibleAARs(ctx, w, r)
	if !ok {
		return
	}

	result := h.Remote.GeneratePromptAnalysis(ctx, aars, req.Prompt)
	h.auditRequest(ctx, r, nil, map[string]string{"scope": "prompt"})
	respond.JSON(w, http.StatusOK, result)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | POST /analysis/custom                                                       |
 *─────────────────────────────────────────────────────────────────────────────*/

type customRequest struct {
	Prompt string `json:"prompt"`
}

type customResponse struct {
	Analysis string `json:"analysis"`
}

// HandleCustomAnalysis sends the caller's accessible events and AARs to
// the AI service with a free-form question and returns prose.
func (h *Handler) HandleCustomAnalysis(w http.ResponseWriter, r *http.Request) {
	var req customRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	ctx, cancel := h.analysisContext(r)
	defer cancel()

	unitIDs, err := unitpolicy.AccessibleUnitIDs(ctx, h.Engine, r)
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: accessible units", err)
		return
	}
	aars, err := h.AARs.GetByUnits(ctx, unitIDs)
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: load aars", err)
		return
	}
	events, err := h.Events.GetByUnits(ctx, unitIDs)
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: load events", err)
		return
	}

	text := h.Remote.GenerateCustomAnalysis(ctx, aars, events, req.Prompt)
	h.auditRequest(ctx, r, nil, map[string]string{"scope": "custom"})
	respond.JSON(w, http.StatusOK, customResponse{Analysis: text})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | helpers                                                                     |
 *─────────────────────────────────────────────────────────────────────────────*/

// analyze routes to the configured provider. The remote service is used
// only when selected and configured; everything else falls back to the
// keyword heuristic.
func (h *Handler) analyze(ctx context.Context, aars []models.AAR) models.AnalysisResult {
	if h.Provider == ProviderOpenAI && h.Remote != nil && h.Remote.Enabled() {
		return h.Remote.GenerateAnalysis(ctx, aars)
	}
	return h.Local.Analyze(aars)
}

func (h *Handler) analysisContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = timeouts.Batch()
	}
	return context.WithTimeout(r.Context(), timeout)
}

func (h *Handler) allowUnit(ctx context.Context, w http.ResponseWriter, r *http.Request, unitID primitive.ObjectID) bool {
	unit, err := h.Units.GetByID(ctx, unitID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "unit not found")
		return false
	}
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: load unit", err)
		return false
	}
	allowed, err := unitpolicy.CanViewUnit(ctx, h.Engine, h.Dir, r, unit)
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: access check", err)
		return false
	}
	if !allowed {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func (h *Handler) accessibleAARs(ctx context.Context, w http.ResponseWriter, r *http.Request) ([]models.AAR, bool) {
	unitIDs, err := unitpolicy.AccessibleUnitIDs(ctx, h.Engine, r)
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: accessible units", err)
		return nil, false
	}
	aars, err := h.AARs.GetByUnits(ctx, unitIDs)
	if err != nil {
		respond.ServerError(w, h.Log, "analysis: load aars", err)
		return nil, false
	}
	return aars, true
}

func (h *Handler) auditRequest(ctx context.Context, r *http.Request, unitID *primitive.ObjectID, details map[string]string) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return
	}
	details["provider"] = h.Provider
	h.AuditLog.AdminAction(ctx, r, audit.EventAnalysisRequested, uid, unitID, details)
}
