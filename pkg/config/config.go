package config

import "time"

// Config is the root configuration structure for Cerberus. It contains all
// configuration sections for the HTTP server, the verification strategies,
// telemetry, and the audit trail.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Recaptcha contains verification configuration: the credentials for
	// exactly one strategy, the acceptance policy, and token extraction.
	Recaptcha RecaptchaConfig `yaml:"recaptcha"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit contains configuration for the verification audit trail
	// including storage backend and retention.
	Audit AuditConfig `yaml:"audit"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are cut off.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RecaptchaConfig contains verification configuration. Exactly one of
// SecretKey and Enterprise must be set.
type RecaptchaConfig struct {
	// SecretKey is the shared secret for the standard siteverify API.
	// Mutually exclusive with Enterprise.
	SecretKey string `yaml:"secret_key"`

	// Enterprise contains reCAPTCHA Enterprise credentials.
	// Mutually exclusive with SecretKey.
	Enterprise EnterpriseConfig `yaml:"enterprise"`

	// Network overrides the verification endpoint. For the standard
	// strategy the built-in alternatives are "google" (default) and
	// "recaptcha-net"; any other value is used as a literal URL.
	Network string `yaml:"network"`

	// Score is the minimum acceptable risk score. Nil disables the
	// score check.
	Score *float64 `yaml:"score"`

	// Actions is the list of allowed action names. Empty allows all.
	Actions []string `yaml:"actions"`

	// Skip disables verification entirely when true. Useful for
	// development environments.
	Skip bool `yaml:"skip"`

	// Timeout is the maximum duration of a single outbound verification
	// call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Debug enables logging of outbound requests and raw responses.
	// Default: false
	Debug bool `yaml:"debug"`

	// TokenSources lists the request locations searched for the token,
	// in order. Empty uses the built-in defaults (form field
	// "g-recaptcha-response", header "X-Recaptcha-Token", query
	// parameter "recaptcha_token").
	TokenSources []TokenSourceConfig `yaml:"token_sources"`
}

// EnterpriseConfig contains reCAPTCHA Enterprise credentials.
type EnterpriseConfig struct {
	// ProjectID is the Google Cloud project identifier.
	ProjectID string `yaml:"project_id"`

	// SiteKey is the site key registered for the project.
	SiteKey string `yaml:"site_key"`

	// APIKey authenticates the assessment call.
	APIKey string `yaml:"api_key"`

	// Endpoint overrides the assessment API base URL. Empty uses the
	// public endpoint.
	Endpoint string `yaml:"endpoint"`
}

// TokenSourceConfig describes one location to search for the token.
type TokenSourceConfig struct {
	// Type is the source kind: "header", "query", "form", or "json".
	Type string `yaml:"type"`

	// Name is the header name, query parameter, form field, or JSON key.
	Name string `yaml:"name"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes source file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path serving the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// AuditConfig contains configuration for the verification audit trail.
type AuditConfig struct {
	// Enabled controls whether verification decisions are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/audit.db"
	SQLitePath string `yaml:"sqlite_path"`

	// RetentionDays is the number of days to retain records. 0 keeps
	// records forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords is the maximum number of records to keep. 0 means
	// unlimited.
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning. Empty
	// disables scheduling.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}
