// Package eventerrors defines the error taxonomy used to drive retry,
// dead-lettering, and HTTP status classification across the pipeline.
package eventerrors

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

// StructuralError is raised at ingestion for a malformed submission. No
// writes happen before this is returned.
type StructuralError struct {
	Field   string
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error on field %q: %s", e.Field, e.Message)
}

// ValidationError is a permanent, kind-specific semantic rule violation
// detected at the worker's VALIDATE step. No retries; straight to DLQ.
type ValidationError struct {
	Kind    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for kind %q: %s", e.Kind, e.Message)
}

// TransientStoreError wraps a store failure that is safe to retry with backoff.
type TransientStoreError struct {
	Cause error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store error: %v", e.Cause)
}
func (e *TransientStoreError) Unwrap() error { return e.Cause }

// TransientQueueError wraps a queue operation failure (publish, consume, ack).
type TransientQueueError struct {
	Op    string
	Cause error
}

func (e *TransientQueueError) Error() string {
	return fmt.Sprintf("transient queue error during %s: %v", e.Op, e.Cause)
}
func (e *TransientQueueError) Unwrap() error { return e.Cause }

// RaceLost means a unique-constraint violation was hit inserting a
// ProcessedRecord; another worker won the race. Treated as DUPLICATE.
type RaceLost struct {
	Fingerprint string
}

func (e *RaceLost) Error() string {
	return fmt.Sprintf("lost insert race for fingerprint %s", e.Fingerprint)
}

// UnknownError wraps an unanticipated exception during processing.
type UnknownError struct {
	Cause error
}

func (e *UnknownError) Error() string { return fmt.Sprintf("unknown processing error: %v", e.Cause) }
func (e *UnknownError) Unwrap() error { return e.Cause }

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

// IsRetryablePostgresError reports whether err represents a transient
// Postgres failure (connection loss, resource exhaustion, deadlock) that is
// safe to retry rather than dead-letter immediately.
func IsRetryablePostgresError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case strings.HasPrefix(pgErr.Code, "53"): // insufficient resources
			return true
		case strings.HasPrefix(pgErr.Code, "57"): // operator intervention
			return true
		case strings.HasPrefix(pgErr.Code, "58"): // system error
			return true
		case pgErr.Code == pgerrcode.DeadlockDetected:
			return true
		case pgErr.Code == pgerrcode.SerializationFailure:
			return true
		}
		return false
	}
	return IsNetworkError(err)
}

// IsNetworkError reports whether err is a network-level connectivity failure.
func IsNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "EOF")
}
