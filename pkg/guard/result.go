package guard

import (
	"context"
	"net/http"

	"mercator-hq/cerberus/pkg/recaptcha"
)

// resultHolderKey is the well-known context key under which the verification
// result is attached to the request.
type resultHolderKey struct{}

// resultHolder is a mutable attachment point installed into the request
// context before the guard runs, so the result written during verification
// is visible to downstream handlers reading the same request.
type resultHolder struct {
	result *recaptcha.VerificationResult
}

// WithResultHolder returns a request whose context carries an empty
// attachment point for the verification result. Middleware installs this
// before invoking the guard.
func WithResultHolder(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), resultHolderKey{}, &resultHolder{})
	return r.WithContext(ctx)
}

// attachResult stores the result on the request's attachment point, if one
// was installed.
func attachResult(r *http.Request, result *recaptcha.VerificationResult) {
	if holder, ok := r.Context().Value(resultHolderKey{}).(*resultHolder); ok {
		holder.result = result
	}
}

// ResultFrom returns the verification result attached to a request, or nil
// when no verification ran (skipped, or the route is unprotected). The
// result is read-only; it includes the raw native response and, for the
// enterprise strategy, the risk-analysis detail.
func ResultFrom(r *http.Request) *recaptcha.VerificationResult {
	return ResultFromContext(r.Context())
}

// ResultFromContext is ResultFrom for callers that only hold the context.
func ResultFromContext(ctx context.Context) *recaptcha.VerificationResult {
	if holder, ok := ctx.Value(resultHolderKey{}).(*resultHolder); ok {
		return holder.result
	}
	return nil
}
