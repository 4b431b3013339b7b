package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CERBERUS_SECTION_FIELD (e.g., CERBERUS_RECAPTCHA_SECRET_KEY) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format CERBERUS_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("CERBERUS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("CERBERUS_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("CERBERUS_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("CERBERUS_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}

	// Recaptcha overrides. Setting a secret key clears any file-based
	// enterprise credentials and vice versa, so an override can switch
	// strategies without editing the file.
	if val := os.Getenv("CERBERUS_RECAPTCHA_SECRET_KEY"); val != "" {
		cfg.Recaptcha.SecretKey = val
		cfg.Recaptcha.Enterprise = EnterpriseConfig{}
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_ENTERPRISE_PROJECT_ID"); val != "" {
		cfg.Recaptcha.Enterprise.ProjectID = val
		cfg.Recaptcha.SecretKey = ""
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_ENTERPRISE_SITE_KEY"); val != "" {
		cfg.Recaptcha.Enterprise.SiteKey = val
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_ENTERPRISE_API_KEY"); val != "" {
		cfg.Recaptcha.Enterprise.APIKey = val
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_ENTERPRISE_ENDPOINT"); val != "" {
		cfg.Recaptcha.Enterprise.Endpoint = val
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_NETWORK"); val != "" {
		cfg.Recaptcha.Network = val
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_SCORE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Recaptcha.Score = &f
		}
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_ACTIONS"); val != "" {
		cfg.Recaptcha.Actions = splitList(val)
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_SKIP"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Recaptcha.Skip = b
		}
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Recaptcha.Timeout = d
		}
	}
	if val := os.Getenv("CERBERUS_RECAPTCHA_DEBUG"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Recaptcha.Debug = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("CERBERUS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CERBERUS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CERBERUS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CERBERUS_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}

	// Audit overrides
	if val := os.Getenv("CERBERUS_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("CERBERUS_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("CERBERUS_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLitePath = val
	}
	if val := os.Getenv("CERBERUS_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = i
		}
	}
	if val := os.Getenv("CERBERUS_AUDIT_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Audit.MaxRecords = i
		}
	}
	if val := os.Getenv("CERBERUS_AUDIT_PRUNE_SCHEDULE"); val != "" {
		cfg.Audit.PruneSchedule = val
	}
}

// splitList parses a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(val string) []string {
	var out []string
	for _, item := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
