package recaptcha

// EnterpriseReason is an invalid-token reason reported by the reCAPTCHA
// Enterprise assessment API in tokenProperties.invalidReason.
type EnterpriseReason string

const (
	ReasonUnspecified   EnterpriseReason = "INVALID_REASON_UNSPECIFIED"
	ReasonUnknown       EnterpriseReason = "UNKNOWN_INVALID_REASON"
	ReasonMalformed     EnterpriseReason = "MALFORMED"
	ReasonExpired       EnterpriseReason = "EXPIRED"
	ReasonDupe          EnterpriseReason = "DUPE"
	ReasonSiteMismatch  EnterpriseReason = "SITE_MISMATCH"
	ReasonMissing       EnterpriseReason = "MISSING"
	ReasonBrowserError  EnterpriseReason = "BROWSER_ERROR"
)

// TransformEnterpriseReason maps an enterprise invalid-token reason onto the
// common ErrorCode taxonomy. The translation is pure and deterministic.
//
// The mapping is lossy: INVALID_REASON_UNSPECIFIED is treated as purely
// informational and yields no error code (ok is false). Whether an invalid
// token carrying only that reason should still produce a code is pending
// product-owner confirmation; callers rely on the validator's default
// fallback to keep a failed result from ending up with zero codes.
func TransformEnterpriseReason(reason EnterpriseReason) (code ErrorCode, ok bool) {
	switch reason {
	case ReasonBrowserError:
		return ErrBrowserError, true
	case ReasonUnknown:
		return ErrUnknownError, true
	case ReasonSiteMismatch:
		return ErrSiteMismatch, true
	case ReasonExpired, ReasonDupe:
		return ErrTimeoutOrDuplicate, true
	case ReasonMalformed:
		return ErrInvalidInputResponse, true
	case ReasonMissing:
		return ErrMissingInputResponse, true
	case ReasonUnspecified:
		return "", false
	default:
		return ErrUnknownError, true
	}
}
