package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/cerberus/pkg/audit"
	"mercator-hq/cerberus/pkg/guard"
	"mercator-hq/cerberus/pkg/recaptcha"
	"mercator-hq/cerberus/pkg/telemetry/metrics"
)

// FailureHandler writes the response for a denied or failed verification.
type FailureHandler func(w http.ResponseWriter, r *http.Request, err error)

// protectConfig carries the optional collaborators of a Protect wrapper.
type protectConfig struct {
	failureHandler FailureHandler
	metrics        *metrics.VerificationMetrics
	auditStore     audit.Store
}

// ProtectOption configures a Protect wrapper.
type ProtectOption func(*protectConfig)

// WithFailureHandler replaces the default JSON failure response.
func WithFailureHandler(h FailureHandler) ProtectOption {
	return func(cfg *protectConfig) {
		if h != nil {
			cfg.failureHandler = h
		}
	}
}

// WithMetrics records verification outcomes into Prometheus metrics.
func WithMetrics(m *metrics.VerificationMetrics) ProtectOption {
	return func(cfg *protectConfig) { cfg.metrics = m }
}

// WithAudit records verification decisions into the audit store.
func WithAudit(store audit.Store) ProtectOption {
	return func(cfg *protectConfig) { cfg.auditStore = store }
}

// Protect wraps a handler with CAPTCHA verification for the given action.
// The action doubles as the override-registry key and, through the per-call
// options, as the expected action submitted to the verification service.
//
// On allow the wrapped handler runs with the verification result attached to
// the request (guard.ResultFrom). On deny the failure handler writes the
// response; the wrapped handler never runs.
func Protect(g *guard.Guard, action string, opts ...ProtectOption) func(http.Handler) http.Handler {
	cfg := protectConfig{
		failureHandler: JSONFailureHandler(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = guard.WithResultHolder(r)

			start := time.Now()
			ok, err := g.CanProceed(guard.NewHTTPContext(r, action))
			elapsed := time.Since(start)

			result := guard.ResultFrom(r)
			cfg.observe(r, action, result, err, elapsed)

			if !ok {
				cfg.failureHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// observe feeds metrics and the audit trail. Failures to record are logged,
// never surfaced to the client.
func (cfg *protectConfig) observe(r *http.Request, action string, result *recaptcha.VerificationResult, verifyErr error, elapsed time.Duration) {
	skipped := verifyErr == nil && result == nil
	strategy := strategyOf(result)

	if cfg.metrics != nil {
		if skipped {
			cfg.metrics.RecordSkip()
		} else {
			cfg.metrics.Record(strategy, result, elapsed)
		}
	}

	if cfg.auditStore == nil {
		return
	}

	rec := audit.NewRecord()
	rec.RequestID = GetRequestID(r.Context())
	rec.Action = action
	rec.Strategy = strategy
	rec.Latency = elapsed

	switch {
	case skipped:
		rec.Outcome = "skipped"
	case result == nil:
		rec.Outcome = "error"
		var netErr *recaptcha.NetworkError
		if errors.As(verifyErr, &netErr) {
			rec.Codes = netErr.ErrorCodes()
		}
	case result.Success:
		rec.Outcome = "allowed"
		rec.Hostname = result.Hostname
		rec.Score = result.Score
		rec.RemoteIP = result.RemoteIP
	default:
		rec.Outcome = "denied"
		rec.Codes = result.Errors
		rec.Hostname = result.Hostname
		rec.Score = result.Score
		rec.RemoteIP = result.RemoteIP
	}

	if err := cfg.auditStore.Insert(r.Context(), rec); err != nil {
		slog.Warn("failed to record verification audit entry", "error", err)
	}
}

// strategyOf labels the strategy that produced a result.
func strategyOf(result *recaptcha.VerificationResult) string {
	if result == nil {
		return "none"
	}
	if _, ok := result.NativeResponse().(*recaptcha.EnterpriseResponse); ok {
		return "enterprise"
	}
	return "standard"
}

// JSONFailureHandler writes the structured denial as JSON: the per-code
// message plus the complete ordered code list, with the status derived from
// the primary code.
func JSONFailureHandler() FailureHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		status := http.StatusInternalServerError
		body := map[string]any{"message": "Verification failed."}

		var verErr *recaptcha.VerificationError
		var netErr *recaptcha.NetworkError
		switch {
		case errors.As(err, &verErr):
			status = verErr.StatusCode()
			body["message"] = verErr.DefaultMessage()
			body["errorCodes"] = verErr.Codes
		case errors.As(err, &netErr):
			status = http.StatusBadGateway
			body["message"] = "The verification service could not be reached."
			body["errorCodes"] = netErr.ErrorCodes()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
