package recaptcha

import (
	"fmt"
	"net/http"
	"strings"
)

// VerificationError is the structured denial raised when a verification
// fails. It carries the complete ordered list of failure codes; the first
// code is the primary cause and drives the HTTP status mapping.
type VerificationError struct {
	// Codes contains all failure codes in the order they were recorded.
	Codes []ErrorCode

	// Message optionally overrides the default per-code message.
	Message string
}

// NewVerificationError creates a VerificationError from an ordered code list.
func NewVerificationError(codes []ErrorCode) *VerificationError {
	return &VerificationError{Codes: codes}
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	parts := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		parts[i] = string(c)
	}
	return fmt.Sprintf("recaptcha verification failed: %s", strings.Join(parts, ", "))
}

// Primary returns the first recorded code, or unknown-error when the list is
// empty.
func (e *VerificationError) Primary() ErrorCode {
	if len(e.Codes) == 0 {
		return ErrUnknownError
	}
	return e.Codes[0]
}

// StatusCode maps the primary code to an HTTP status. Request-shape faults
// map to a client error; secret misconfiguration and unclassified remote
// failures map to a server error.
func (e *VerificationError) StatusCode() int {
	switch e.Primary() {
	case ErrMissingInputResponse, ErrInvalidInputResponse, ErrTimeoutOrDuplicate,
		ErrForbiddenAction, ErrLowScore, ErrInvalidKeys, ErrSiteMismatch,
		ErrBrowserError, ErrIncorrectCaptchaSol:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// DefaultMessage returns the user-facing message for the primary code, unless
// a custom message was set.
func (e *VerificationError) DefaultMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Primary() {
	case ErrMissingInputSecret:
		return "The secret parameter is missing."
	case ErrInvalidInputSecret:
		return "The secret parameter is invalid or malformed."
	case ErrMissingInputResponse:
		return "The response parameter is missing."
	case ErrInvalidInputResponse:
		return "The response parameter is invalid or malformed."
	case ErrBadRequest:
		return "The request is invalid or malformed."
	case ErrTimeoutOrDuplicate:
		return "The response is no longer valid: either is too old or has been used previously."
	case ErrForbiddenAction:
		return "The action is not allowed."
	case ErrLowScore:
		return "The score is below the configured threshold."
	case ErrNetworkError:
		return "The verification service could not be reached."
	default:
		return "Unknown error when checking captcha."
	}
}

// NetworkError is raised when the outbound verification call fails at the
// transport level (connection refused, reset, timeout). It is deliberately a
// distinct type from VerificationError so hosts can apply retry or
// circuit-breaking policy to infrastructure failures without conflating them
// with remote verification decisions.
type NetworkError struct {
	// Code is the underlying transport error code, when known
	// (e.g. "connection refused", "context deadline exceeded").
	Code string

	// Cause is the underlying transport error.
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("recaptcha network error %q", e.Code)
	}
	return "recaptcha network error"
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// ErrorCodes returns the code list for this failure class, always
// [network-error].
func (e *NetworkError) ErrorCodes() []ErrorCode {
	return []ErrorCode{ErrNetworkError}
}

// ValidatorResolutionError indicates that neither a secret key nor enterprise
// credentials are configured. This is a fatal misconfiguration surfaced at
// call time so that runtime reconfiguration remains possible.
type ValidatorResolutionError struct{}

// Error implements the error interface.
func (e *ValidatorResolutionError) Error() string {
	return "cannot resolve recaptcha validator: neither secret key nor enterprise options are configured"
}
