package services

import (
	"errors"

	"github.com/mobilecollector/backoffice/internal/store"
)

var (
	// ErrUnauthorized means the request carries no usable session identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the identity's role does not grant the action.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned for any failed login, whichever part was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports a rejected request payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// NotFoundError names the missing resource in a user-facing message.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Unwrap() error { return store.ErrNotFound }

// ConflictError reports a uniqueness violation in a user-facing message.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return store.ErrConflict }

// notFound converts store.ErrNotFound into a NotFoundError carrying message and
// passes other errors through.
func notFound(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Message: message}
	}
	return err
}

func conflict(err error, message string) error {
	if errors.Is(err, store.ErrConflict) {
		return &ConflictError{Message: message}
	}
	return err
}
