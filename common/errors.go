package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotFoundError indicates that a record doesn't exist or isn't owned by the caller.
type NotFoundError struct {
	message string
}

// Error returns the error message for a NotFoundError.
func (e NotFoundError) Error() string {
	return e.message
}

// NewNotFoundError returns a new NotFoundError.
func NewNotFoundError(formatString string, a ...interface{}) NotFoundError {
	return NotFoundError{message: fmt.Sprintf(formatString, a...)}
}

// DuplicateError indicates that an equivalent active record already exists.
type DuplicateError struct {
	message string
}

// Error returns the error message for a DuplicateError.
func (e DuplicateError) Error() string {
	return e.message
}

// NewDuplicateError returns a new DuplicateError.
func NewDuplicateError(formatString string, a ...interface{}) DuplicateError {
	return DuplicateError{message: fmt.Sprintf(formatString, a...)}
}

// ValidationError indicates that a caller-supplied argument is outside of the accepted range.
type ValidationError struct {
	message string
}

// Error returns the error message for a ValidationError.
func (e ValidationError) Error() string {
	return e.message
}

// NewValidationError returns a new ValidationError.
func NewValidationError(formatString string, a ...interface{}) ValidationError {
	return ValidationError{message: fmt.Sprintf(formatString, a...)}
}

// DependencyUnavailableError indicates that the record store or the email transport couldn't be reached.
type DependencyUnavailableError struct {
	message string
	cause   error
}

// Error returns the error message for a DependencyUnavailableError.
func (e DependencyUnavailableError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
}

// Unwrap returns the underlying cause.
func (e DependencyUnavailableError) Unwrap() error {
	return e.cause
}

// NewDependencyUnavailableError returns a new DependencyUnavailableError wrapping cause.
func NewDependencyUnavailableError(cause error, formatString string, a ...interface{}) DependencyUnavailableError {
	return DependencyUnavailableError{message: fmt.Sprintf(formatString, a...), cause: cause}
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

// IsDuplicate returns true if err is or wraps a DuplicateError.
func IsDuplicate(err error) bool {
	var target DuplicateError
	return errors.As(err, &target)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

// IsDependencyUnavailable returns true if err is or wraps a DependencyUnavailableError.
func IsDependencyUnavailable(err error) bool {
	var target DependencyUnavailableError
	return errors.As(err, &target)
}
