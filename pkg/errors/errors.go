package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflicting operation is already in progress
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeNetwork indicates the request could not be sent or completed
	ErrorTypeNetwork ErrorType = "NETWORK"

	// ErrorTypeHTTP indicates the backend answered with a non-2xx status
	ErrorTypeHTTP ErrorType = "HTTP"

	// ErrorTypeParse indicates a JSON response body could not be parsed
	ErrorTypeParse ErrorType = "PARSE"
)

// AppError represents an application error
type AppError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *AppError) Error() string {
	prefix := string(e.Type)
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("%s %d", e.Type, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewNetworkError creates an error for a request that never got a response
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeNetwork,
		Message: message,
		Err:     err,
	}
}

// NewHTTPError creates an error for a non-2xx backend response
func NewHTTPError(statusCode int, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewParseError creates an error for a malformed JSON response
func NewParseError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParse,
		Message: message,
		Err:     err,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return 0
}

// IsNotFound reports a missing entity, either typed locally or a 404 from the backend.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound) || StatusCode(err) == 404
}

// IsUnauthorized reports a backend rejection of the session cookie.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == 401 || code == 403
}
