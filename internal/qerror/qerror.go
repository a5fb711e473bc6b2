// Package qerror defines the typed errors the query engine reports at
// setup and execution time. Row-level conditions (numeric parse failures,
// rows over the field cap) are never errors; they drop the row and
// scanning continues.
package qerror

import (
	"errors"
	"fmt"
)

// Code categorizes an engine error so callers can branch on the failure
// class instead of parsing messages.
type Code string

const (
	// CodeEmptyInput means the source had no usable header line: none at
	// all, or one over the per-row field cap.
	CodeEmptyInput Code = "EMPTY_INPUT"

	// CodeColumnNotFound means a projection, predicate, or sort column is
	// not present in the header after case-folding.
	CodeColumnNotFound Code = "COLUMN_NOT_FOUND"

	// CodeInvalidPredicate means the WHERE tree is structurally broken.
	// Only reachable through upstream parser bugs.
	CodeInvalidPredicate Code = "INVALID_PREDICATE"

	// CodeIO wraps a read, write, or map failure with the kernel detail
	// attached.
	CodeIO Code = "IO_ERROR"

	// CodeResource means a scratch buffer, arena, or mapping could not be
	// allocated.
	CodeResource Code = "RESOURCE_ERROR"
)

// Error carries a code alongside the message and an optional cause.
type Error struct {
	code    Code
	message string
	cause   error
}

// New builds an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(cause error, code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...), cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.cause }

// Code returns the error's category.
func (e *Error) Code() Code { return e.code }

// CodeOf extracts the Code from err or any error it wraps. Errors that
// never passed through this package return the zero Code "".
func CodeOf(err error) Code {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.code
	}
	return ""
}
