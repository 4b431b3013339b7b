package recaptcha

import (
	"net/http"
	"time"
)

const (
	// GoogleEndpoint is the vendor's public siteverify endpoint.
	GoogleEndpoint = "https://www.google.com/recaptcha/api/siteverify"

	// RecaptchaNetEndpoint is the globally reachable siteverify mirror for
	// environments where google.com is blocked.
	RecaptchaNetEndpoint = "https://recaptcha.net/recaptcha/api/siteverify"

	// EnterpriseEndpoint is the base URL of the reCAPTCHA Enterprise API.
	EnterpriseEndpoint = "https://recaptchaenterprise.googleapis.com"

	// DefaultTimeout bounds the outbound verification call.
	DefaultTimeout = 10 * time.Second
)

// EnterpriseOptions carries the credentials for the enterprise
// risk-assessment strategy.
type EnterpriseOptions struct {
	// ProjectID is the Google Cloud project that owns the reCAPTCHA key.
	ProjectID string

	// SiteKey is the enterprise site key the token was issued for.
	SiteKey string

	// APIKey authenticates the assessment call; it is passed as a query
	// parameter.
	APIKey string

	// Endpoint overrides the enterprise API base URL. Defaults to
	// EnterpriseEndpoint.
	Endpoint string
}

// TokenProvider extracts the challenge token from the originating request.
type TokenProvider func(r *http.Request) (string, error)

// RemoteIPProvider extracts the caller IP from the originating request.
type RemoteIPProvider func(r *http.Request) string

// SkipPredicate decides per request whether verification should be skipped
// entirely.
type SkipPredicate func(r *http.Request) bool

// Options is the long-lived module configuration. Exactly one of SecretKey
// or Enterprise must be set; the pairing is validated by Validate and
// maintained transactionally by ConfigRef's mutators.
//
// Options values are read through a shared ConfigRef on every verification,
// so administrative mutation is immediately visible to all consumers.
type Options struct {
	// SecretKey selects the standard siteverify strategy.
	SecretKey string

	// Enterprise selects the enterprise assessment strategy.
	Enterprise *EnterpriseOptions

	// Network overrides the siteverify endpoint (self-hosted proxies,
	// alternate regions). Defaults to GoogleEndpoint.
	Network string

	// Score is the default score policy applied to v3 and enterprise
	// responses. Nil means no score check.
	Score ScoreValidator

	// Actions is the allow-list of acceptable server-reported actions,
	// consulted when no expected action is set for the call. Nil means any
	// action is acceptable.
	Actions []string

	// Token extracts the challenge token from the request. Required for
	// guard usage.
	Token TokenProvider

	// RemoteIP extracts the caller IP from the request. Optional.
	RemoteIP RemoteIPProvider

	// Skip statically disables verification (environment gating).
	Skip bool

	// SkipIf decides per request whether to skip verification. When set it
	// takes precedence over Skip.
	SkipIf SkipPredicate

	// Timeout bounds the outbound verification call. Defaults to
	// DefaultTimeout.
	Timeout time.Duration

	// Debug enables logging of the outbound request body, the raw response
	// and raw error detail. Control flow is never altered.
	Debug bool
}

// Validate checks the mutual-exclusion invariant: exactly one of secret key
// or enterprise credentials must be configured.
func (o *Options) Validate() error {
	hasSecret := o.SecretKey != ""
	hasEnterprise := o.Enterprise != nil && *o.Enterprise != (EnterpriseOptions{})

	if hasSecret == hasEnterprise {
		return &ConfigError{
			Message: "exactly one of secret key or enterprise options must be configured",
		}
	}
	return nil
}

// ConfigError indicates invalid module configuration. It is fatal and never
// retried.
type ConfigError struct {
	// Message describes the configuration fault.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "recaptcha configuration error: " + e.Message
}
