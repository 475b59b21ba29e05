package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers branch on these with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrAuthz      = errors.New("not allowed")
	ErrNotFound   = errors.New("not found")
)

// ErrLoginRequired is the ErrAuth raised when there is no actor at all, as
// opposed to rejected credentials.
var ErrLoginRequired = fmt.Errorf("%w: login required", ErrAuth)

// Error carries a message meant for the user alongside its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}
