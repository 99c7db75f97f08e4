// Package apperr holds the error kinds shared by the store, the repositories,
// the order workflow and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the requested identifier does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation: malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrConstraintViolation: referential integrity, uniqueness or a business rule rejected the write.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStoreFault: unexpected persistence failure.
	ErrStoreFault = errors.New("store fault")
	// ErrDispatchFailure: a notification could not be delivered. Never surfaced to API callers.
	ErrDispatchFailure = errors.New("dispatch failure")
)

// Kind names the taxonomy entry an error belongs to.
type Kind string

const (
	KindNotFound            Kind = "not-found"
	KindValidation          Kind = "validation-error"
	KindConstraintViolation Kind = "constraint-violation"
	KindDispatchFailure     Kind = "dispatch-failure"
	KindStoreFault          Kind = "store-fault"
)

// KindOf reports the taxonomy kind for err. Unknown errors are store faults.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConstraintViolation):
		return KindConstraintViolation
	case errors.Is(err, ErrDispatchFailure):
		return KindDispatchFailure
	default:
		return KindStoreFault
	}
}

// NotFound returns an ErrNotFound wrapped with the entity name and id.
func NotFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// Validation wraps a message as ErrValidation.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Constraint wraps cause as ErrConstraintViolation.
func Constraint(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrConstraintViolation, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrConstraintViolation, msg, cause)
}

// StoreFault wraps cause as ErrStoreFault.
func StoreFault(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreFault, op, cause)
}
