// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/Deepak-cell311/GreenBook/internal/app/analysis/keyword"
	"github.com/Deepak-cell311/GreenBook/internal/app/analysis/venice"
	aarsfeature "github.com/Deepak-cell311/GreenBook/internal/app/features/aars"
	analysisfeature "github.com/Deepak-cell311/GreenBook/internal/app/features/analysis"
	eventsfeature "github.com/Deepak-cell311/GreenBook/internal/app/features/events"
	healthfeature "github.com/Deepak-cell311/GreenBook/internal/app/features/health"
	loginfeature "github.com/Deepak-cell311/GreenBook/internal/app/features/login"
	logoutfeature "github.com/Deepak-cell311/GreenBook/internal/app/features/logout"
	notificationsfeature "github.com/Deepak-cell311/GreenBook/internal/app/features/notifications"
	unitsfeature "github.com/Deepak-cell311/GreenBook/internal/app/features/units"
	usersfeature "github.com/Deepak-cell311/GreenBook/internal/app/features/users"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/access"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auditlog"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the DB clients and stores bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// GreenBook initializes the session store, builds the access engine and
// analyzers, and mounts the JSON API: health, auth, units, users, events,
// AARs, analysis, and notifications.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	auth.SessionName = appCfg.SessionName
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	engine := access.New(deps.Directory, logger)
	auditLog := auditlog.New(deps.Audit, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	localAnalyzer := keyword.New(nil, appCfg.LegacyPriority)
	remoteAnalyzer := venice.New(appCfg.OpenAIAPIKey, appCfg.OpenAIAPIURL, appCfg.OpenAIModel, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the SessionUser into context if logged
	// in, making the current user available via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication, with brute-force protection on login
	loginLimiter := ratelimit.NewLoginLimiter()
	loginHandler := loginfeature.NewHandler(deps.Users, loginLimiter, auditLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Unit hierarchy
	unitsHandler := unitsfeature.NewHandler(deps.Units, engine, deps.Directory, auditLog, logger)
	r.Mount("/units", unitsfeature.Routes(unitsHandler))

	// Users and assignments
	usersHandler := usersfeature.NewHandler(deps.Users, deps.Units, deps.Assignments, engine, deps.Directory, auditLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))
	r.Mount("/assignments", usersfeature.AssignmentRoutes(usersHandler))

	// Training events
	eventsHandler := eventsfeature.NewHandler(deps.Events, deps.Units, deps.Notifications, engine, deps.Directory, auditLog, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler))

	// After-action reviews
	aarsHandler := aarsfeature.NewHandler(deps.AARs, deps.Events, deps.Units, engine, deps.Directory, auditLog, logger)
	r.Mount("/aars", aarsfeature.Routes(aarsHandler))

	// AAR analysis
	analysisHandler := &analysisfeature.Handler{
		AARs:     deps.AARs,
		Events:   deps.Events,
		Units:    deps.Units,
		Engine:   engine,
		Dir:      deps.Directory,
		Local:    localAnalyzer,
		Remote:   remoteAnalyzer,
		Provider: appCfg.AnalysisProvider,
		Timeout:  appCfg.AnalysisTimeout,
		AuditLog: auditLog,
		Log:      logger,
	}
	r.Mount("/analysis", analysisfeature.Routes(analysisHandler))

	// In-app notifications
	notificationsHandler := notificationsfeature.NewHandler(deps.Notifications, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))

	return r, nil
}
