// Package errs contains sentinel errors shared by the domain, application and transport layers.
package errs

import "errors"

var (
	// ErrUnauthenticated means no acting identity could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor is authenticated but may not touch the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned for status changes the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict means the record changed between load and update.
	ErrConflict = errors.New("concurrent modification")

	// ErrAlreadyExists indicates a unique constraint violation (e.g. email taken).
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError carries a caller-facing message for rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation builds a *ValidationError.
func Validation(msg string) error {
	return &ValidationError{Message: msg}
}
