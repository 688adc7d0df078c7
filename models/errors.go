package models

import (
	"errors"
	"fmt"
)

// ErrorValidation is returned for malformed or inconsistent input.
type ErrorValidation struct {
	Message string
}

func (e ErrorValidation) Error() string { return e.Message }

// ErrorNotFound is returned when a content item or snapshot does not exist,
// or a snapshot does not belong to the referenced item.
type ErrorNotFound struct {
	Message string
}

func (e ErrorNotFound) Error() string { return e.Message }

// ErrorForbidden is returned when the actor is neither the author nor an admin.
type ErrorForbidden struct {
	Message string
}

func (e ErrorForbidden) Error() string { return e.Message }

// ErrorConflict is returned when the item's current state does not allow the operation.
type ErrorConflict struct {
	Message string
}

func (e ErrorConflict) Error() string { return e.Message }

// ErrorStoreUnavailable wraps a persistence failure.
type ErrorStoreUnavailable struct {
	Err error
}

func (e ErrorStoreUnavailable) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e ErrorStoreUnavailable) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...interface{}) error {
	return ErrorValidation{Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return ErrorNotFound{Message: fmt.Sprintf(format, args...)}
}

func NewForbiddenError(format string, args ...interface{}) error {
	return ErrorForbidden{Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) error {
	return ErrorConflict{Message: fmt.Sprintf(format, args...)}
}

func NewStoreUnavailableError(err error) error {
	return ErrorStoreUnavailable{Err: err}
}

func IsValidation(err error) bool {
	var target ErrorValidation
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target ErrorNotFound
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ErrorForbidden
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ErrorConflict
	return errors.As(err, &target)
}

func IsStoreUnavailable(err error) bool {
	var target ErrorStoreUnavailable
	return errors.As(err, &target)
}
