// Package apperror provides structured error handling for the valuation core.
// All business errors must use AppError so callers can distinguish
// "fix your input" from "try again" from "contact an administrator".
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Business rule violations (409/422)
	CodeStaleRecord       = "STALE_RECORD"
	CodeScopeExhausted    = "SCOPE_EXHAUSTED"
	CodeDocumentImmutable = "DOCUMENT_IMMUTABLE"
	CodeCreditLimit       = "CREDIT_LIMIT_EXCEEDED"

	// Internal invariant violations: always fatal, never silently ignored
	CodeInconsistentState = "INCONSISTENT_STATE"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the core.
// It implements the error interface and carries structured details.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, record IDs, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code for the UI shell
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400).
// Validation failures are surfaced immediately and never partially applied.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewStaleRecord is returned to the loser of a concurrent rate-fixing race.
// The caller should re-fetch the open record set and retry with a fresh
// selection; the core never retries on its own.
func NewStaleRecord(recordID any) *AppError {
	return &AppError{
		Code:       CodeStaleRecord,
		Message:    "Record was already settled by another fixing. Refresh the pending list and retry.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"record_id": recordID},
	}
}

// NewScopeExhausted is returned when a document number sequence would
// overflow its digit width. Requires operator/administrator intervention.
func NewScopeExhausted(scopeKey string, lastValue int64) *AppError {
	return &AppError{
		Code:       CodeScopeExhausted,
		Message:    fmt.Sprintf("Sequence %s is exhausted", scopeKey),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"scope_key": scopeKey, "last_value": lastValue},
	}
}

// NewDocumentImmutable is returned when modifying a posted or settled document.
func NewDocumentImmutable(docID any, status string) *AppError {
	return &AppError{
		Code:       CodeDocumentImmutable,
		Message:    "Document is posted and can no longer be modified. Corrections require a compensating document.",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"document_id": docID, "status": status},
	}
}

// NewInconsistentState reports an internal invariant violation, e.g. a
// pending record referencing a document that does not exist. Always fatal.
func NewInconsistentState(message string) *AppError {
	return &AppError{
		Code:       CodeInconsistentState,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewInternal creates an internal error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsStaleRecord checks if error is CodeStaleRecord
func IsStaleRecord(err error) bool {
	return hasCode(err, CodeStaleRecord)
}

// IsScopeExhausted checks if error is CodeScopeExhausted
func IsScopeExhausted(err error) bool {
	return hasCode(err, CodeScopeExhausted)
}

// IsInconsistentState checks if error is CodeInconsistentState
func IsInconsistentState(err error) bool {
	return hasCode(err, CodeInconsistentState)
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
