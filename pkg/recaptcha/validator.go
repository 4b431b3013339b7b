package recaptcha

import (
	"context"
	"errors"
	"net"
	"net/url"
)

// Validator is the verification strategy contract. Implementations send the
// token (plus optional caller IP) to their remote endpoint, classify the
// response, apply score/action policy and produce a VerificationResult.
//
// Transport-level failures are returned as a *NetworkError; they are never
// folded into the result since they imply a different remediation than a
// remote verification decision.
type Validator interface {
	Validate(ctx context.Context, opts VerifyOptions) (*VerificationResult, error)
}

// networkErrorCode extracts a short transport error code from an outbound
// call failure, e.g. "connection refused" or "context deadline exceeded".
func networkErrorCode(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		var opErr *net.OpError
		if errors.As(urlErr.Err, &opErr) {
			return opErr.Err.Error()
		}
		return urlErr.Err.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return err.Error()
}
