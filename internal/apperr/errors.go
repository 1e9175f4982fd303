// Package apperr defines the error kinds shared by the storage, service and API layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidInput        = errors.New("invalid input")
)

// Error attaches a message to one of the sentinel kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// NotFound reports a missing entity, e.g. NotFound("artist", 7).
func NotFound(entity string, id int64) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf("%s %d", entity, id)}
}

// Constraint reports a storage constraint violation.
func Constraint(format string, args ...any) error {
	return &Error{Kind: ErrConstraintViolation, Msg: fmt.Sprintf(format, args...)}
}

// Invalid wraps a validation or decoding failure.
func Invalid(err error) error {
	return &Error{Kind: ErrInvalidInput, Msg: err.Error()}
}
