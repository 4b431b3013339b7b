package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "recaptcha.secret_key").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateRecaptcha(&cfg.Recaptcha)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}

	return errs
}

// validateRecaptcha validates verification configuration. Exactly one of the
// standard secret key and the enterprise credentials must be present.
func validateRecaptcha(cfg *RecaptchaConfig) []FieldError {
	var errs []FieldError

	hasSecret := cfg.SecretKey != ""
	hasEnterprise := cfg.Enterprise != (EnterpriseConfig{})

	switch {
	case hasSecret && hasEnterprise:
		errs = append(errs, FieldError{
			Field:   "recaptcha",
			Message: "secret_key and enterprise are mutually exclusive",
		})
	case !hasSecret && !hasEnterprise:
		errs = append(errs, FieldError{
			Field:   "recaptcha",
			Message: "either secret_key or enterprise must be configured",
		})
	}

	if hasEnterprise {
		if cfg.Enterprise.ProjectID == "" {
			errs = append(errs, FieldError{
				Field:   "recaptcha.enterprise.project_id",
				Message: "project id is required",
			})
		}
		if cfg.Enterprise.SiteKey == "" {
			errs = append(errs, FieldError{
				Field:   "recaptcha.enterprise.site_key",
				Message: "site key is required",
			})
		}
		if cfg.Enterprise.APIKey == "" {
			errs = append(errs, FieldError{
				Field:   "recaptcha.enterprise.api_key",
				Message: "api key is required",
			})
		}
	}

	if cfg.Score != nil && (*cfg.Score < 0 || *cfg.Score > 1) {
		errs = append(errs, FieldError{
			Field:   "recaptcha.score",
			Message: "score threshold must be between 0 and 1",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "recaptcha.timeout",
			Message: "timeout must be positive",
		})
	}

	for i, src := range cfg.TokenSources {
		switch src.Type {
		case "header", "query", "form", "json":
		default:
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("recaptcha.token_sources[%d].type", i),
				Message: fmt.Sprintf("unknown source type %q (expected header, query, form, or json)", src.Type),
			})
		}
		if src.Name == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("recaptcha.token_sources[%d].name", i),
				Message: "source name is required",
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown log level %q (expected debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown log format %q (expected json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	return errs
}

// validateAudit validates audit configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("unknown backend %q (expected sqlite or memory)", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite_path",
			Message: "database path is required for the sqlite backend",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.max_records",
			Message: "max records must be non-negative",
		})
	}

	return errs
}
