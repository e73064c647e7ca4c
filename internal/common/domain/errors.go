package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies domain errors so transport layers can map them
// to status codes without inspecting messages.
type ErrorCode string

const (
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeInvalidState   ErrorCode = "INVALID_STATE"
	CodeNotCancellable ErrorCode = "NOT_CANCELLABLE"
	CodeNotModifiable  ErrorCode = "NOT_MODIFIABLE"
	CodeTransient      ErrorCode = "TRANSIENT"
)

// DomainError is the common error type for business-rule failures.
type DomainError struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.cause }

// NewValidationError reports bad input rejected before any state mutation.
func NewValidationError(msg string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: msg}
}

// NewNotFoundError reports a missing entity by type and identifier.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError reports contention: overlap, exhausted inventory, or a
// lost optimistic-lock race.
func NewConflictError(msg string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: msg}
}

// NewInvalidStateError reports an illegal lifecycle transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{Code: CodeInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewNotCancellableError reports a cancellation rejected by the state machine
// or the cancellation window.
func NewNotCancellableError(msg string) *DomainError {
	return &DomainError{Code: CodeNotCancellable, Message: msg}
}

// NewNotModifiableError reports an update against a terminal reservation.
func NewNotModifiableError(msg string) *DomainError {
	return &DomainError{Code: CodeNotModifiable, Message: msg}
}

// NewTransientError wraps a persistence failure that is expected to succeed
// on retry (serialization conflict, deadlock, connection drop, timeout).
func NewTransientError(msg string, cause error) *DomainError {
	return &DomainError{Code: CodeTransient, Message: msg, cause: cause}
}

// CodeOf extracts the error code, or empty string for non-domain errors.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsTransient reports whether err is classified as retryable.
func IsTransient(err error) bool { return CodeOf(err) == CodeTransient }

// IsConflict reports whether err is a contention failure.
func IsConflict(err error) bool { return CodeOf(err) == CodeConflict }
