package engine

import (
	"errors"
	"fmt"
)

// EngineError represents a failure of the engine itself, as opposed to the
// typed rejection/conflict results returned to callers.
//
// Engine errors include:
//   - Store unavailable: the durable log or revision store is unreachable
//   - Outcome unknown: the failure happened mid-append; the commit may
//     have landed and the caller must re-query before retrying
//   - Integrity violation: a gap or duplicate in the event sequence;
//     never recovered from locally
type EngineError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// DocumentID identifies the affected document, when known.
	DocumentID string

	// Revision identifies the affected revision, when known.
	Revision int64

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeStoreUnavailable indicates the durable store is unreachable.
	// No partial state was written.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// ErrCodeOutcomeUnknown indicates a failure mid-append. The commit may
	// have succeeded; the caller must re-query by idempotency key or head
	// revision before retrying.
	ErrCodeOutcomeUnknown ErrorCode = "OUTCOME_UNKNOWN"

	// ErrCodeIntegrityViolation indicates a gap or duplicate in the event
	// sequence. Fatal for the document: surfaces to operators, never
	// silently skipped or reordered.
	ErrCodeIntegrityViolation ErrorCode = "INTEGRITY_VIOLATION"

	// ErrCodeInvalidRequest indicates a malformed request to a read path
	// (e.g. catch-up from a revision beyond head).
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.DocumentID != "" && e.Revision > 0 {
		return fmt.Sprintf("%s: %s (document=%s, revision=%d)", e.Code, e.Message, e.DocumentID, e.Revision)
	}
	if e.DocumentID != "" {
		return fmt.Sprintf("%s: %s (document=%s)", e.Code, e.Message, e.DocumentID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsIntegrityViolation reports whether err is an integrity violation.
// Uses errors.As to handle wrapped errors.
func IsIntegrityViolation(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeIntegrityViolation
	}
	return false
}

// IsOutcomeUnknown reports whether err left the commit outcome unknown.
// Callers must treat this as "maybe committed", not as failure.
func IsOutcomeUnknown(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeOutcomeUnknown
	}
	return false
}

// NewIntegrityError creates an EngineError for a sequencing violation.
func NewIntegrityError(documentID string, revision int64, message string) *EngineError {
	return &EngineError{
		Code:       ErrCodeIntegrityViolation,
		Message:    message,
		DocumentID: documentID,
		Revision:   revision,
	}
}

// storeError classifies a storage failure. A failure inside the append
// transaction has an unknown outcome; anything before it means nothing
// was written and the store was simply unavailable.
func storeError(documentID string, cause error, midAppend bool) *EngineError {
	code := ErrCodeStoreUnavailable
	message := "durable store unavailable"
	if midAppend {
		code = ErrCodeOutcomeUnknown
		message = "append interrupted; commit outcome unknown"
	}
	return &EngineError{
		Code:       code,
		Message:    message,
		DocumentID: documentID,
		Err:        cause,
	}
}
