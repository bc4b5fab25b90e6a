// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/app/features/analysis"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for GreenBook.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: GREENBOOK_MONGO_URI, GREENBOOK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "greenbook", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "greenbook-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Global admin bootstrap
	{Name: "admin_password", Default: "", Desc: "Password for the reserved admin account (created on startup if missing)"},

	// AAR analysis
	{Name: "analysis_provider", Default: "local", Desc: "Analysis provider: 'local' (keyword heuristic) or 'openai'"},
	{Name: "analysis_timeout", Default: "60s", Desc: "Deadline for a single analysis request (e.g., 30s, 2m)"},
	{Name: "legacy_priority", Default: true, Desc: "Preserve the historical recommendation priority ordering"},

	// OpenAI-compatible AI service
	{Name: "openai_api_key", Default: "", Desc: "API key for the AI analysis service (blank disables it)"},
	{Name: "openai_api_url", Default: "", Desc: "Base URL for the AI service (blank means the OpenAI default)"},
	{Name: "openai_model", Default: "gpt-4o", Desc: "Model used for AAR analysis"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, GREENBOOK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GREENBOOK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		AdminPassword: appValues.String("admin_password"),

		AnalysisProvider: appValues.String("analysis_provider"),
		AnalysisTimeout:  appValues.Duration("analysis_timeout", 60*time.Second),
		LegacyPriority:   appValues.Bool("legacy_priority"),

		OpenAIAPIKey: appValues.String("openai_api_key"),
		OpenAIAPIURL: appValues.String("openai_api_url"),
		OpenAIModel:  appValues.String("openai_model"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}
	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// GreenBook validates the MongoDB URI format and the analysis provider
// early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.AnalysisProvider {
	case analysis.ProviderLocal, analysis.ProviderOpenAI:
	default:
		return fmt.Errorf("analysis_provider must be %q or %q, got %q",
			analysis.ProviderLocal, analysis.ProviderOpenAI, appCfg.AnalysisProvider)
	}

	if appCfg.AnalysisProvider == analysis.ProviderOpenAI && appCfg.OpenAIAPIKey == "" {
		logger.Warn("analysis_provider is 'openai' but openai_api_key is empty; analysis will fall back to the keyword heuristic")
	}

	return nil
}
