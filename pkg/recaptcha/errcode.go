package recaptcha

// ErrorCode identifies a single verification failure reason.
// The same closed taxonomy is shared by the standard and enterprise
// strategies; enterprise-specific invalid-token reasons are translated into
// this set by TransformEnterpriseReason.
type ErrorCode string

const (
	// ErrMissingInputSecret indicates the secret parameter was missing.
	ErrMissingInputSecret ErrorCode = "missing-input-secret"

	// ErrInvalidInputSecret indicates the secret parameter was invalid or malformed.
	ErrInvalidInputSecret ErrorCode = "invalid-input-secret"

	// ErrMissingInputResponse indicates the challenge token was missing.
	ErrMissingInputResponse ErrorCode = "missing-input-response"

	// ErrInvalidInputResponse indicates the challenge token was invalid or malformed.
	ErrInvalidInputResponse ErrorCode = "invalid-input-response"

	// ErrBadRequest indicates the verification request itself was malformed.
	ErrBadRequest ErrorCode = "bad-request"

	// ErrTimeoutOrDuplicate indicates the token is too old or was already used.
	ErrTimeoutOrDuplicate ErrorCode = "timeout-or-duplicate"

	// ErrUnknownError indicates an unclassified remote failure.
	ErrUnknownError ErrorCode = "unknown-error"

	// ErrForbiddenAction indicates the server-reported action did not satisfy
	// the expected action or the configured allow-list.
	ErrForbiddenAction ErrorCode = "forbidden-action"

	// ErrLowScore indicates the risk score did not satisfy the score policy.
	ErrLowScore ErrorCode = "low-score"

	// ErrInvalidKeys indicates the configured site/secret key pair is invalid.
	ErrInvalidKeys ErrorCode = "invalid-keys"

	// ErrIncorrectCaptchaSol indicates an incorrect CAPTCHA solution.
	ErrIncorrectCaptchaSol ErrorCode = "incorrect-captcha-sol"

	// ErrNetworkError indicates the outbound verification call failed at the
	// transport level before any remote decision was received.
	ErrNetworkError ErrorCode = "network-error"

	// ErrSiteMismatch indicates the token was generated for a different site
	// key (enterprise only).
	ErrSiteMismatch ErrorCode = "site-mismatch"

	// ErrBrowserError indicates a client-side browser failure during the
	// challenge (enterprise only).
	ErrBrowserError ErrorCode = "browser-error"
)

// parseRemoteCodes converts the raw "error-codes" values of a siteverify
// response into typed ErrorCodes. Unknown strings pass through unchanged so
// the remote taxonomy can grow without dropping information.
func parseRemoteCodes(raw []any) []ErrorCode {
	codes := make([]ErrorCode, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			codes = append(codes, ErrorCode(s))
		}
	}
	return codes
}
