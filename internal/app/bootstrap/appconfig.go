// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request limits. AppConfig is
// where everything specific to GreenBook lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: greenbook-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Global admin bootstrap. The username is fixed; only the password is
	// configurable. Startup creates the account if it does not exist.
	AdminPassword string

	// AAR analysis configuration
	AnalysisProvider string        // "local" (keyword heuristic) or "openai"
	AnalysisTimeout  time.Duration // Deadline for a single analysis request
	LegacyPriority   bool          // Preserve the historical recommendation priority ordering

	// OpenAI-compatible AI service configuration
	OpenAIAPIKey string // API key; blank disables the remote analyzer
	OpenAIAPIURL string // Base URL (blank means the default OpenAI endpoint)
	OpenAIModel  string // Model name (e.g., gpt-4o)

	// Audit logging settings
	AuditLogAuth  string // Auth event logging: "all", "db", "log", or "off"
	AuditLogAdmin string // Admin event logging: "all", "db", "log", or "off"
}
