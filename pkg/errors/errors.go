// Package errors provides custom error types for the application.
// It defines domain-specific errors with error codes for CLI output and API responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents application error codes
type ErrorCode string

// Error codes for different error categories
const (
	// General errors (1xxx)
	ErrCodeInternal     ErrorCode = "E1000"
	ErrCodeValidation   ErrorCode = "E1001"
	ErrCodeNotFound     ErrorCode = "E1002"
	ErrCodeConflict     ErrorCode = "E1003"
	ErrCodeForbidden    ErrorCode = "E1004"
	ErrCodeUnauthorized ErrorCode = "E1005"

	// Hosting service errors (2xxx)
	ErrCodeGitClone         ErrorCode = "E2001"
	ErrCodeGitAuth          ErrorCode = "E2002"
	ErrCodeGitNotFound      ErrorCode = "E2003"
	ErrCodeProviderDisabled ErrorCode = "E2004"
	ErrCodeRemoteURL        ErrorCode = "E2005"
	ErrCodeTransport        ErrorCode = "E2006"
	ErrCodeRemoteStatus     ErrorCode = "E2007"
	ErrCodeDecode           ErrorCode = "E2008"
	ErrCodeCancelled        ErrorCode = "E2009"

	// Configuration errors (6xxx)
	ErrCodeConfigNotFound ErrorCode = "E6001"
	ErrCodeConfigInvalid  ErrorCode = "E6002"
	ErrCodeConfigParse    ErrorCode = "E6003"
	ErrCodeTokenMissing   ErrorCode = "E6004"
)

// Exit codes for command failures
const (
	// ExitCodeConfigValidation indicates configuration validation failure (e.g., missing token)
	ExitCodeConfigValidation = 2

	// ExitCodeCancelled is used when the user interrupts a running command
	ExitCodeCancelled = 130
)

// AppError represents an application-level error with code and context
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	Details any       `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for the error
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound, ErrCodeGitNotFound:
		return http.StatusNotFound
	case ErrCodeValidation, ErrCodeRemoteURL:
		return http.StatusBadRequest
	case ErrCodeUnauthorized, ErrCodeGitAuth, ErrCodeTokenMissing:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeProviderDisabled:
		return http.StatusForbidden
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeTransport, ErrCodeRemoteStatus, ErrCodeDecode:
		return http.StatusBadGateway
	case ErrCodeCancelled:
		// nginx convention for client closed request
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// Common error constructors for convenience

// ErrInternal creates an internal server error
func ErrInternal(message string, err error) *AppError {
	return Wrap(ErrCodeInternal, message, err)
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ErrUnauthorized creates an unauthorized error
func ErrUnauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// ErrForbidden creates a forbidden error
func ErrForbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError attempts to convert an error to AppError, following wrap chains
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given application code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
