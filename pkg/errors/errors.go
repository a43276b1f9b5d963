// Package errors defines the coded error taxonomy shared by every
// component: construction, wrapping, structured fields and matching via
// the standard errors.Is/As machinery.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCode classifies an error for programmatic handling.
type ErrorCode int

const (
	// Core error codes.
	Unknown ErrorCode = iota
	InvalidInput
	ValidationFailed
	ResourceNotFound
	Canceled

	// State processing errors.
	DimensionMismatch
	RealityTooLow
	AcceleratorUnavailable

	// Optimizer errors.
	ConvergenceFailed
)

var codeNames = map[ErrorCode]string{
	Unknown:                "unknown",
	InvalidInput:           "invalid_input",
	ValidationFailed:       "validation_failed",
	ResourceNotFound:       "resource_not_found",
	Canceled:               "canceled",
	DimensionMismatch:      "dimension_mismatch",
	RealityTooLow:          "reality_too_low",
	AcceleratorUnavailable: "accelerator_unavailable",
	ConvergenceFailed:      "convergence_failed",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Fields carries structured diagnostic data attached to an error.
type Fields map[string]interface{}

// Error is the concrete error type used throughout the engine. It pairs
// a code with a message, optionally wraps a cause, and can carry fields.
type Error struct {
	code     ErrorCode
	message  string
	original error
	fields   Fields
}

// New creates an error from a code and message.
func New(code ErrorCode, message string) error {
	return &Error{code: code, message: message}
}

// Wrap layers a code and message over an existing cause. A nil cause
// yields nil so call sites can wrap unconditionally.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, original: err}
}

// WithFields returns a copy of err carrying the merged fields. Errors
// from outside this package are first wrapped under the Unknown code.
func WithFields(err error, fields Fields) error {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		return &Error{
			code:     Unknown,
			message:  err.Error(),
			original: err,
			fields:   fields,
		}
	}

	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Error{
		code:     e.code,
		message:  e.message,
		original: e.original,
		fields:   merged,
	}
}

// Error renders the message, the cause chain, and the fields in sorted
// key order so the output is stable across runs.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.message)

	if e.original != nil {
		b.WriteString(": ")
		b.WriteString(e.original.Error())
	}

	if len(e.fields) > 0 {
		keys := make([]string, 0, len(e.fields))
		for k := range e.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.fields[k])
		}
		b.WriteString("]")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.original
}

func (e *Error) Code() ErrorCode {
	return e.code
}

// Is matches on the error code, so errors.Is treats two errors with the
// same code as equivalent regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.code == t.code
}

// As supports errors.As into a **Error target.
func (e *Error) As(target interface{}) bool {
	p, ok := target.(**Error)
	if ok {
		*p = e
	}
	return ok
}

// Fields returns a copy of the attached fields; callers may mutate the
// result freely.
func (e *Error) Fields() Fields {
	fields := make(Fields, len(e.fields))
	for k, v := range e.fields {
		fields[k] = v
	}
	return fields
}
