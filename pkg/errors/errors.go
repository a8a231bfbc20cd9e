// Package errors provides structured error types for spyglass.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP handler and the core
//   - Machine-readable error codes for programmatic handling
//   - Visible failure annotations inside dumps (see [Annotation])
//   - Error wrapping with context preservation
//
// The dump engine itself never returns these errors to its caller; it turns
// them into placeholder nodes. They surface from configuration loading,
// scratch storage setup and the outer surfaces.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND / CHUNK_*: Missing or conflicting resources
//   - SCRATCH_*: Host environment defects
//   - INTROSPECTION_*: Failures while reading a value
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "max_depth must be >= 0, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeScratchUnavailable, origErr, "create %s", dir)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeChunkExists  Code = "CHUNK_EXISTS"
	ErrCodeChunkMissing Code = "CHUNK_MISSING"

	// Host environment errors
	ErrCodeScratchUnavailable Code = "SCRATCH_UNAVAILABLE"

	// Value introspection errors
	ErrCodeIntrospection Code = "INTROSPECTION_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// Annotation renders err as the short text attached to a failure placeholder
// inside a dump. Panics recovered from the host are passed in as values, so
// anything that is not an error is formatted with %v.
func Annotation(v any) string {
	switch x := v.(type) {
	case nil:
		return "unknown failure"
	case error:
		return UserMessage(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
