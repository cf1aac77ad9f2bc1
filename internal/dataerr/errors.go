// Package dataerr defines the error kinds reported by pipeline stages.
//
// Every stage returns an *Error that wraps one of the sentinel kinds below,
// so callers can branch with errors.Is regardless of the underlying cause:
//
//	if errors.Is(err, dataerr.ErrStateError) { ... }
package dataerr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrParseError        = errors.New("parse error")
	ErrStateError        = errors.New("invalid pipeline state")
	ErrInvalidTransform  = errors.New("invalid transform")
	ErrComputationError  = errors.New("computation error")
	ErrWriteError        = errors.New("write error")
)

// Error carries the kind plus the operation and subject (file or column)
// that failed.
type Error struct {
	Kind    error
	Op      string
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Op
	if e.Subject != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Subject)
	}
	if msg != "" {
		msg += ": "
	}
	msg += e.Kind.Error()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds an *Error of the given kind.
func New(kind error, op, subject string, err error) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: err}
}

// Newf builds an *Error whose cause is a formatted message.
func Newf(kind error, op, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: fmt.Errorf(format, args...)}
}

// NotFound reports a missing input file.
func NotFound(op, path string, err error) *Error { return New(ErrNotFound, op, path, err) }

// UnsupportedFormat reports an unknown file kind or extension.
func UnsupportedFormat(op, subject string) *Error {
	return New(ErrUnsupportedFormat, op, subject, nil)
}

// Parse reports malformed content.
func Parse(op, path string, err error) *Error { return New(ErrParseError, op, path, err) }

// State reports a stage invoked before its prerequisite.
func State(op, msg string) *Error { return New(ErrStateError, op, "", errors.New(msg)) }

// Transform reports an invalid transform step.
func Transform(op, subject string, err error) *Error {
	return New(ErrInvalidTransform, op, subject, err)
}

// Write reports an I/O failure during persistence.
func Write(op, path string, err error) *Error { return New(ErrWriteError, op, path, err) }

// KindOf returns the sentinel kind wrapped by err, or nil.
func KindOf(err error) error {
	for _, k := range []error{
		ErrNotFound, ErrUnsupportedFormat, ErrParseError, ErrStateError,
		ErrInvalidTransform, ErrComputationError, ErrWriteError,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
