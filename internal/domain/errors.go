package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and the HTTP layer. Callers match with errors.Is.
var (
	ErrValidation             = errors.New("validation failed")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrOptimisticLockConflict = errors.New("application modified, please refresh")
	ErrOutOfOrder             = errors.New("visa document out of order")
	ErrNotFound               = errors.New("not found")
	ErrAlreadyFinalized       = errors.New("already finalized")
	ErrForbidden              = errors.New("forbidden")
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrTokenInvalid           = errors.New("registration token invalid or expired")
	ErrDuplicate              = errors.New("already exists")
)

// ValidationError reports one malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TransitionError reports an illegal status change on an application or document.
type TransitionError struct {
	Subject string
	From    string
	To      string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Subject, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// OutOfOrderError names the visa step that must be approved first.
type OutOfOrderError struct {
	Requested DocumentType
	Required  DocumentType
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("cannot upload %s before %s is approved", e.Requested, e.Required)
}

func (e *OutOfOrderError) Unwrap() error { return ErrOutOfOrder }
