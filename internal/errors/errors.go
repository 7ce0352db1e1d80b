// Package errors provides standardized domain errors with codes for shellhook.
//
// Usage:
//
//	// In the reaction core - return typed errors
//	if tmplErr != nil {
//	    return errors.Render("template failed").WithCause(tmplErr)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrRender) {
//	    // reaction failed while rendering a template
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeRender:
//	        ...
//	    case errors.CodeExecution:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	// CodeConfiguration marks construction-time configuration failures:
	// missing executor source, missing command-production strategies.
	CodeConfiguration Code = "CONFIGURATION"
	// CodeRender marks a template that failed to render for an event.
	CodeRender Code = "RENDER"
	// CodeGeneration marks a command generator that returned an error or panicked.
	CodeGeneration Code = "GENERATION"
	// CodeExecution marks an executor batch that failed.
	CodeExecution  Code = "EXECUTION"
	CodeValidation Code = "VALIDATION"
	CodeNotFound   Code = "NOT_FOUND"
	CodeInternal   Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrConfiguration = &Error{Code: CodeConfiguration, Message: "configuration error"}
	ErrRender        = &Error{Code: CodeRender, Message: "render error"}
	ErrGeneration    = &Error{Code: CodeGeneration, Message: "generation error"}
	ErrExecution     = &Error{Code: CodeExecution, Message: "execution error"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Configuration creates a configuration error.
func Configuration(msg string) *Error {
	return &Error{Code: CodeConfiguration, Message: msg}
}

// Configurationf creates a configuration error with formatted message.
func Configurationf(format string, args ...any) *Error {
	return &Error{Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Render creates a render error.
func Render(msg string) *Error {
	return &Error{Code: CodeRender, Message: msg}
}

// Renderf creates a render error with formatted message.
func Renderf(format string, args ...any) *Error {
	return &Error{Code: CodeRender, Message: fmt.Sprintf(format, args...)}
}

// Generation creates a generation error.
func Generation(msg string) *Error {
	return &Error{Code: CodeGeneration, Message: msg}
}

// Generationf creates a generation error with formatted message.
func Generationf(format string, args ...any) *Error {
	return &Error{Code: CodeGeneration, Message: fmt.Sprintf(format, args...)}
}

// Execution creates an execution error.
func Execution(msg string) *Error {
	return &Error{Code: CodeExecution, Message: msg}
}

// Executionf creates an execution error with formatted message.
func Executionf(format string, args ...any) *Error {
	return &Error{Code: CodeExecution, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
