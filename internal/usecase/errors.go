package usecase

import (
	"errors"
	"fmt"
)

// Error kinds returned by the services. Match with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// ErrInvalidTransition is a kind of conflict.
var ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrConflict)

// Error carries a kind and a caller-facing message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func invalid(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}
