// Package errors provides standardized error handling for the verification
// pipeline. Connector failures are classified here so the orchestrator can
// decide between surfacing a field error and dropping to a fallback tier.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeRecordNotFound    ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeTransportFailed   ErrorCode = "TRANSPORT_FAILED"
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeCacheMiss         ErrorCode = "CACHE_MISS"
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeStaleResponse     ErrorCode = "STALE_RESPONSE"
	ErrCodeInvalidState      ErrorCode = "INVALID_STATE"
)

// PipelineError represents a structured application error.
type PipelineError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Field     string    `json:"field,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("PipelineError[%s]: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Constructors
// ==========================

// NewValidationError creates a field-level input error. These block step
// advancement and never trigger a fallback tier.
func NewValidationError(field, message string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Field:     field,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates an error for an upstream service that explicitly
// reported no record. Treated like a validation failure, not a transport one.
func NewNotFoundError(field, service, details string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeRecordNotFound,
		Message:   fmt.Sprintf("No record found in %s", service),
		Details:   details,
		Field:     field,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportError creates an error for a network failure, timeout or
// non-success status. Triggers the next fallback tier.
func NewTransportError(service string, err error) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeTransportFailed,
		Message:   fmt.Sprintf("Service '%s' transport error", service),
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMalformedResponseError creates an error for a response body that is not
// parseable as the expected structure, including error pages returned with a
// success status. Treated identically to a transport failure.
func NewMalformedResponseError(service, details string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeMalformedResponse,
		Message:   fmt.Sprintf("Service '%s' returned a malformed response", service),
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheMissError creates an error for an absent snapshot entry.
func NewCacheMissError(key string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeCacheMiss,
		Message:   "No cached snapshot for key",
		Details:   key,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceError creates an error for a failed application save. These
// are absorbed; the user-visible flow completes regardless.
func NewPersistenceError(err error) *PipelineError {
	return &PipelineError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Application persistence failed",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStaleResponseError marks a connector result that arrived after its step
// was restarted or superseded.
func NewStaleResponseError(step string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeStaleResponse,
		Message:   "Connector result discarded as stale",
		Details:   fmt.Sprintf("step: %s", step),
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStateError signals a transition the state machine does not allow.
func NewInvalidStateError(from, requested string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeInvalidState,
		Message:   "Step not reachable from current state",
		Details:   fmt.Sprintf("current: %s, requested: %s", from, requested),
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// IsFallbackTrigger reports whether an error should drop the connector to
// its next acquisition tier. Only transport and malformed-response failures
// qualify; explicit not-found and validation errors never do.
func IsFallbackTrigger(err error) bool {
	var pe *PipelineError
	if !errors.As(err, &pe) {
		// Unclassified errors from lower layers count as transport failures.
		return err != nil
	}
	return pe.Code == ErrCodeTransportFailed || pe.Code == ErrCodeMalformedResponse
}

// IsFieldError reports whether an error should surface as an inline field
// error and block step advancement.
func IsFieldError(err error) bool {
	var pe *PipelineError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Code == ErrCodeValidationFailed || pe.Code == ErrCodeRecordNotFound
}

// FieldOf returns the field name attached to an error, or empty.
func FieldOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Field
	}
	return ""
}

// CodeOf returns the error code, or empty for foreign errors.
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
