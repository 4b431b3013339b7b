package recaptcha

// ScoreValidator decides whether a risk score reported by the remote service
// is acceptable. A score policy is either a plain numeric threshold
// (ScoreThreshold) or an arbitrary predicate (ScoreFunc).
type ScoreValidator interface {
	// Valid reports whether the score passes the policy.
	Valid(score float64) bool
}

// ScoreThreshold is a numeric score policy: a score passes iff it is greater
// than or equal to the threshold.
type ScoreThreshold float64

// Valid implements ScoreValidator.
func (t ScoreThreshold) Valid(score float64) bool {
	return score >= float64(t)
}

// ScoreFunc is a predicate score policy.
type ScoreFunc func(score float64) bool

// Valid implements ScoreValidator.
func (f ScoreFunc) Valid(score float64) bool {
	return f(score)
}

// VerifyOptions is the per-call input to a Validator. A fresh value is
// constructed for every verification; it is never shared between calls.
type VerifyOptions struct {
	// Response is the challenge token submitted by the client. Required.
	Response string

	// RemoteIP is the caller's IP address. Optional.
	RemoteIP string

	// Score overrides the module-level score policy for this call. Optional.
	Score ScoreValidator

	// Action is the expected action name for this call. When set, the
	// server-reported action must match it exactly. Optional.
	Action string
}

// isValidAction applies the action policy: an explicit expected action must
// match exactly; otherwise a configured allow-list must contain the reported
// action; with neither, the check passes vacuously.
func isValidAction(action string, opts VerifyOptions, allowed []string) bool {
	if opts.Action != "" {
		return opts.Action == action
	}
	if allowed == nil {
		return true
	}
	for _, a := range allowed {
		if a == action {
			return true
		}
	}
	return false
}

// isValidScore applies the score policy, preferring the per-call override
// over the module-level policy. With no policy configured the check passes
// vacuously.
func isValidScore(score float64, opts VerifyOptions, configured ScoreValidator) bool {
	policy := opts.Score
	if policy == nil {
		policy = configured
	}
	if policy == nil {
		return true
	}
	return policy.Valid(score)
}
