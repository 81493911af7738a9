package service

import (
	"errors"
	"fmt"

	"techstore-admin/internal/util"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrInvalidCredentials = errors.New("invalid email, password or role")
)

// ValidationError is returned when input is refused. The store is left
// untouched.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AuthorizationError is returned when the actor lacks the rights for an
// operation.
type AuthorizationError struct {
	Op      string
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrForbidden
}

func invalid(op, format string, args ...interface{}) error {
	util.ValidationFailuresTotal.WithLabelValues(op).Inc()
	return &ValidationError{Op: op, Message: fmt.Sprintf(format, args...)}
}

func forbidden(op, format string, args ...interface{}) error {
	util.AuthorizationFailuresTotal.WithLabelValues(op).Inc()
	return &AuthorizationError{Op: op, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}
