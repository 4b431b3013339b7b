package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/cerberus/pkg/recaptcha"
)

// Config contains configuration for the verification metrics.
type Config struct {
	// Namespace is the metric name prefix. Default: "cerberus".
	Namespace string

	// DurationBuckets are the histogram buckets for verification latency.
	DurationBuckets []float64
}

// VerificationMetrics tracks metrics related to CAPTCHA verification.
//
// Metrics:
//   - cerberus_verifications_total: Verification count by strategy, outcome, primary code
//   - cerberus_verification_duration_seconds: Remote verification latency histogram
//   - cerberus_verification_score: Distribution of reported risk scores
type VerificationMetrics struct {
	verificationsTotal *prometheus.CounterVec
	duration           *prometheus.HistogramVec
	score              *prometheus.HistogramVec
}

// NewVerificationMetrics creates and registers verification metrics with the
// provided registry.
func NewVerificationMetrics(cfg Config, registry *prometheus.Registry) *VerificationMetrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "cerberus"
	}
	if cfg.DurationBuckets == nil {
		cfg.DurationBuckets = prometheus.DefBuckets
	}

	vm := &VerificationMetrics{
		verificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "verifications_total",
				Help:      "Total number of CAPTCHA verifications processed",
			},
			[]string{"strategy", "outcome", "primary_code"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "verification_duration_seconds",
				Help:      "Duration of CAPTCHA verifications in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"strategy"},
		),

		score: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "verification_score",
				Help:      "Distribution of risk scores reported by the verification service",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"strategy"},
		),
	}

	registry.MustRegister(
		vm.verificationsTotal,
		vm.duration,
		vm.score,
	)

	return vm
}

// Record observes one completed verification. A nil result (network or
// resolution failure) is counted as an error outcome with the given code.
func (vm *VerificationMetrics) Record(strategy string, result *recaptcha.VerificationResult, elapsed time.Duration) {
	vm.duration.WithLabelValues(strategy).Observe(elapsed.Seconds())

	if result == nil {
		vm.verificationsTotal.WithLabelValues(strategy, "error", string(recaptcha.ErrNetworkError)).Inc()
		return
	}

	outcome := "denied"
	primary := ""
	if result.Success {
		outcome = "allowed"
	} else if len(result.Errors) > 0 {
		primary = string(result.Errors[0])
	}
	vm.verificationsTotal.WithLabelValues(strategy, outcome, primary).Inc()

	if result.Score != nil {
		vm.score.WithLabelValues(strategy).Observe(*result.Score)
	}
}

// RecordSkip counts a verification bypassed by the skip predicate.
func (vm *VerificationMetrics) RecordSkip() {
	vm.verificationsTotal.WithLabelValues("none", "skipped", "").Inc()
}
