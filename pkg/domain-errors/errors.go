// Package domainerrors provides coded errors that travel unchanged from the point
// of detection to the transport boundary, where the code is mapped to a status.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for the transport layer.
type Code string

const (
	// Validation failures: malformed ids, emails, roles.
	CodeValidation   Code = "validation_error"
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"

	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"

	// CodeInvalidState covers invitations that are expired or no longer actionable.
	CodeInvalidState Code = "invalid_state"

	// CodeInvariantViolation is raised by aggregate constructors and mutators.
	// Services translate it before it reaches a handler.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeIntegrity signals that a referenced record is missing when it must exist.
	CodeIntegrity Code = "integrity_error"

	CodeTimeout  Code = "timeout"
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Two errors are equal under errors.Is when code
// and message match, so package-level values can serve as sentinels.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// As extracts the outermost coded error from err.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost coded error in err carries code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost coded error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}
