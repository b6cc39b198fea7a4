package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate signals a unique-index violation on username or email.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidCredentials signals a failed password comparison.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized signals a missing or unusable credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError carries an HTTP status alongside a client-safe message.
type APIError struct {
	Status  int
	Message string
	cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// NewValidationError reports bad or missing input.
func NewValidationError(format string, args ...any) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError reports a duplicate unique field.
func NewConflictError(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Message: message, cause: ErrDuplicate}
}

// NewUnauthorizedError reports a missing, invalid, expired or mismatched credential.
func NewUnauthorizedError(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message, cause: ErrUnauthorized}
}

// NewNotFoundError reports a missing record.
func NewNotFoundError(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message, cause: ErrNotFound}
}

// NewInternalError wraps an unexpected failure without leaking internals.
func NewInternalError(err error) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Message: "internal server error", cause: err}
}
