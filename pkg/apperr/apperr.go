// Package apperr defines the application error taxonomy shared by services
// and HTTP handlers. Services return *Error values; handlers translate them
// to status codes via pkg/response.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies an error category.
type Code string

const (
	CodeValidation       Code = "validation"
	CodeNotFound         Code = "not_found"
	CodeConflict         Code = "conflict"
	CodeCapacityExceeded Code = "capacity_exceeded"
	CodeDeadlineExpired  Code = "deadline_expired"
	CodeForbidden        Code = "forbidden"
	CodeNotStarted       Code = "not_started"
	CodeEnded            Code = "ended"
	CodeDependency       Code = "dependency"
)

// FieldError is a per-field validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries a code, a human-readable message, optional per-field
// validation messages, and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Validation creates a validation error carrying field-level messages.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// NotFound creates a not_found error.
func NotFound(message string) *Error { return New(CodeNotFound, message) }

// Conflict creates a conflict error.
func Conflict(message string) *Error { return New(CodeConflict, message) }

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error { return New(CodeForbidden, message) }

// CapacityExceeded creates a capacity_exceeded error.
func CapacityExceeded(message string) *Error { return New(CodeCapacityExceeded, message) }

// DeadlineExpired creates a deadline_expired error.
func DeadlineExpired(message string) *Error { return New(CodeDeadlineExpired, message) }

// NotStarted creates a not_started error.
func NotStarted(message string) *Error { return New(CodeNotStarted, message) }

// Ended creates an ended error.
func Ended(message string) *Error { return New(CodeEnded, message) }

// Dependency creates a dependency error wrapping the collaborator failure.
func Dependency(message string, err error) *Error {
	return &Error{Code: CodeDependency, Message: message, Err: err}
}

// CodeOf returns the taxonomy code of err, or "" if err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool { return CodeOf(err) == code }
