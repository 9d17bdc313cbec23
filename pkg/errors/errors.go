// Package errors provides structured error types for the stackarray engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The engine codes mirror the failure taxonomy of the array engine:
//   - OUT_OF_RANGE: a locator component is outside [0, count)
//   - NOT_IN_GROUP: a named parameter does not exist
//   - ALREADY_ACTIVE: a parameter store owner is assigned twice
//   - MAKE_ME_PROXY: a serialized record cannot be reconstructed
//   - NOT_IMPLEMENTED_YET: a deliberately unfinished operation was called
//
// # Usage
//
//	err := errors.New(errors.ErrCodeOutOfRange, "row %d outside [0, %d)", row, rows)
//	if errors.Is(err, errors.ErrCodeOutOfRange) {
//	    // No position available for this locator
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMakeMeProxy, origErr, "read item %d", i)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine errors
	ErrCodeOutOfRange        Code = "OUT_OF_RANGE"
	ErrCodeNotInGroup        Code = "NOT_IN_GROUP"
	ErrCodeAlreadyActive     Code = "ALREADY_ACTIVE"
	ErrCodeMakeMeProxy       Code = "MAKE_ME_PROXY"
	ErrCodeNotImplementedYet Code = "NOT_IMPLEMENTED_YET"
	ErrCodeCyclicExpression  Code = "CYCLIC_EXPRESSION"

	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidDefinition Code = "INVALID_DEFINITION"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidKey        Code = "INVALID_KEY"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
		if e.Code == code {
			return true
		}
		return Is(e.Cause, code)
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
		return e.Message
	}
	return err.Error()
}

// NotImplemented returns the error raised by deliberately unfinished operations.
func NotImplemented(op string) *Error {
	return New(ErrCodeNotImplementedYet, "%s is not implemented", op)
}
