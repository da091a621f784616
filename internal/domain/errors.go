package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrTokenTaken    = errors.New("token already issued")

	// ErrProviderTransport marks a messaging provider fault that is not about the recipient
	// (network unreachable, credentials rejected). Delivery runs return it so the job is retried.
	ErrProviderTransport = errors.New("messaging provider transport failure")
)

// ValidationError describes bad caller input. It unwraps to ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a *ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
