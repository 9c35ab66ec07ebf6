package errors

import "fmt"

// ErrorCode represents an Orden error code.
type ErrorCode string

const (
	ErrInvalidArguments ErrorCode = "INVALID_ARGUMENTS" // 400
	ErrUnknownTool      ErrorCode = "UNKNOWN_TOOL"      // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrAlreadyExists    ErrorCode = "ALREADY_EXISTS"    // 409
	ErrInternal         ErrorCode = "INTERNAL"          // 500
	ErrUpstream         ErrorCode = "UPSTREAM_ERROR"    // 502
	ErrNotConfigured    ErrorCode = "NOT_CONFIGURED"    // 503
)

// OrdenError represents a structured error with code, status, and details.
type OrdenError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *OrdenError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidArguments creates a 400 error for malformed or missing tool arguments.
func NewInvalidArguments(msg string) *OrdenError {
	return &OrdenError{
		Code:    ErrInvalidArguments,
		Status:  400,
		Message: msg,
	}
}

// NewUnknownTool creates a 400 error for a tool name outside the registry.
func NewUnknownTool(name string) *OrdenError {
	return &OrdenError{
		Code:    ErrUnknownTool,
		Status:  400,
		Message: fmt.Sprintf("unknown tool: %s", name),
		Details: map[string]any{"tool": name},
	}
}

// NewNotFound creates a 404 error. kind names what was looked up ("note", "folder").
func NewNotFound(kind, identifier string) *OrdenError {
	return &OrdenError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{kind + "Id": identifier},
	}
}

// NewAlreadyExists creates a 409 error for identifier collisions.
func NewAlreadyExists(kind, identifier string) *OrdenError {
	return &OrdenError{
		Code:    ErrAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("%s already exists: %s", kind, identifier),
		Details: map[string]any{kind + "Id": identifier},
	}
}

// NewUpstream creates a 502 error for failures of an external service.
// The suggestion is surfaced to the caller as a hint for recovery.
func NewUpstream(msg, suggestion string) *OrdenError {
	e := &OrdenError{
		Code:    ErrUpstream,
		Status:  502,
		Message: msg,
	}
	if suggestion != "" {
		e.Details = map[string]any{"suggestion": suggestion}
	}
	return e
}

// NewNotConfigured creates a 503 error when a required credential is missing.
func NewNotConfigured(envVar string) *OrdenError {
	return &OrdenError{
		Code:    ErrNotConfigured,
		Status:  503,
		Message: fmt.Sprintf("The notes agent is not configured. Please set the %s environment variable.", envVar),
		Details: map[string]any{"env": envVar},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *OrdenError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &OrdenError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an OrdenError with the given code.
func Is(err error, code ErrorCode) bool {
	if oErr, ok := err.(*OrdenError); ok {
		return oErr.Code == code
	}
	return false
}
