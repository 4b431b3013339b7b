package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mercator-hq/cerberus/pkg/recaptcha"
)

// Record is one verification decision.
type Record struct {
	// ID is a unique record identifier.
	ID string `json:"id"`

	// Time is when the verification completed.
	Time time.Time `json:"time"`

	// RequestID correlates the record with request logs.
	RequestID string `json:"request_id,omitempty"`

	// Action is the protected operation's action name.
	Action string `json:"action,omitempty"`

	// Strategy is the verification strategy used ("standard", "enterprise",
	// or "none" when skipped).
	Strategy string `json:"strategy"`

	// Outcome is "allowed", "denied", "skipped" or "error".
	Outcome string `json:"outcome"`

	// Codes lists the failure codes for denied outcomes.
	Codes []recaptcha.ErrorCode `json:"codes,omitempty"`

	// Hostname is the server-reported hostname, when present.
	Hostname string `json:"hostname,omitempty"`

	// Score is the reported risk score, when present.
	Score *float64 `json:"score,omitempty"`

	// RemoteIP is the caller IP submitted with the verification.
	RemoteIP string `json:"remote_ip,omitempty"`

	// Latency is the end-to-end verification duration.
	Latency time.Duration `json:"latency"`
}

// NewRecord creates a record with a fresh ID and timestamp.
func NewRecord() *Record {
	return &Record{
		ID:   uuid.New().String(),
		Time: time.Now().UTC(),
	}
}

// Store persists verification records.
type Store interface {
	// Insert stores one record.
	Insert(ctx context.Context, rec *Record) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes records older than the cutoff and returns how
	// many were deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the n oldest records and returns how many were
	// deleted.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Close releases storage resources.
	Close() error
}

// StorageError wraps a storage backend failure with its operation.
type StorageError struct {
	// Backend is the storage backend name ("sqlite", "memory").
	Backend string

	// Op is the failed operation.
	Op string

	// Cause is the underlying error.
	Cause error
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, op string, cause error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Cause: cause}
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %q %s failed: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}
