// Package apperr defines the error kinds surfaced by the quiz services.
//
// Every failure a caller can act on carries a Kind. Errors that do not carry
// one (driver errors, context deadlines) are treated as storage failures.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and transports.
type Kind uint8

const (
	KindStorage Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
	KindConflict
)

// String returns the machine-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "storage"
	}
}

// Error is a classified error with a human-readable message.
type Error struct {
	Kind    Kind   // error classification
	Message string // message safe to show to the caller
	Err     error  // underlying cause (optional)
}

// Sentinels matching any error of the given kind through errors.Is.
var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrValidation = &Error{Kind: KindValidation}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrStorage    = &Error{Kind: KindStorage}
)

func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" || t.Err != nil {
		return e == t
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf creates an error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity, e.g. NotFound("quiz", 7) -> "quiz 7 not found".
func NotFound(entity string, id any) *Error {
	return Errorf(KindNotFound, "%s %v not found", entity, id)
}

// Forbidden creates an authorization error.
func Forbidden(msg string) *Error {
	return New(KindForbidden, msg)
}

// Validation creates an input validation error.
func Validation(msg string) *Error {
	return New(KindValidation, msg)
}

// Conflict creates a state conflict error.
func Conflict(msg string) *Error {
	return New(KindConflict, msg)
}

// Storage wraps a persistence failure. Errors that already carry a kind are
// returned unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// KindOf returns the kind of err. Unclassified errors are storage failures.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindStorage {
		if ae.Message != "" {
			return ae.Message
		}
		return ae.Kind.String()
	}
	return "storage failure"
}
