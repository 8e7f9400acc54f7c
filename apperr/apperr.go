// Package apperr classifies core errors so that controllers can map them
// to responses without inspecting backend error strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// Authorization: a permission or ownership check failed. Never retried.
	Authorization Kind = "authorization"
	// Validation: the request is malformed, caught before any store call.
	Validation Kind = "validation"
	// InvalidTransition: the requested status change is not in the
	// allowed-transition table, caught before any store call.
	InvalidTransition Kind = "invalid_transition"
	// Conflict: an optimistic compare-and-set mismatch; the caller must
	// re-read current state before retrying.
	Conflict Kind = "conflict"
	// Transient: a network or backend failure; safe to retry.
	Transient Kind = "transient"
	// NotFound: the referenced record no longer exists or is out of scope.
	NotFound Kind = "not_found"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or Transient when err carries no
// classification (an unclassified error crossing the boundary is by
// definition a backend failure).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Transient
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
