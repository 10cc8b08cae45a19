// Package errors provides structured error types for qroute.
//
// Every failure that reaches a user, whether through the CLI or the HTTP
// API, carries a machine-readable [Code]. Library packages declare their own
// sentinel errors and wrap them; the router and pipeline translate those
// into coded errors at their boundary.
//
// # Error Codes
//
//   - INVALID_*: malformed input (circuits, devices, options, paths)
//   - *_NOT_FOUND: missing resources
//   - TOPOLOGY_DISCONNECTED, UNROUTABLE, ROUTING_FAILURE: routing outcomes
//   - BRIDGE_INVALID, CONTRACT_VIOLATION: inconsistent frontier state
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown device: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors and name the qubits involved
//	err := errors.Wrap(errors.ErrCodeUnroutable, cause, "no node for %s", q).
//	    WithSubjects(q.String())
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidCircuit  Code = "INVALID_CIRCUIT"
	ErrCodeInvalidTopology Code = "INVALID_TOPOLOGY"
	ErrCodeInvalidDevice   Code = "INVALID_DEVICE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeDeviceNotFound Code = "DEVICE_NOT_FOUND"

	// Routing outcomes
	ErrCodeDisconnected   Code = "TOPOLOGY_DISCONNECTED"
	ErrCodeUnroutable     Code = "UNROUTABLE"
	ErrCodeRoutingFailure Code = "ROUTING_FAILURE"

	// Contract violations between router and frontier
	ErrCodeBridgeInvalid     Code = "BRIDGE_INVALID"
	ErrCodeContractViolation Code = "CONTRACT_VIOLATION"

	// Internal errors
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code     Code     // Machine-readable error code
	Message  string   // Human-readable message
	Subjects []string // Nodes or qubits the error is about (optional)
	Cause    error    // Underlying error (optional)
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

// WithSubjects records the nodes or qubits involved and returns e.
func (e *Error) WithSubjects(subjects ...string) *Error {
	e.Subjects = append(e.Subjects, subjects...)
	return e
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
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidCircuit,
		ErrCodeInvalidTopology, ErrCodeInvalidDevice, ErrCodeInvalidPath:
		return 400
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeDeviceNotFound:
		return 404
	case ErrCodeDisconnected, ErrCodeUnroutable, ErrCodeRoutingFailure:
		return 422
	case ErrCodeTimeout:
		return 504
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
