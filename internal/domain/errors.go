package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrNotFound indicates a resource is absent, or exists but is hidden from
// the acting user. Both cases look identical to the caller.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrForbidden indicates an authenticated user lacks permission for the
// operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrUnauthorized indicates missing or invalid credentials.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates a concurrent mutation raced this one: the record's
// status changed between read and write.
type ErrConflict struct {
	Resource string
	ID       string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("conflict: %s %s was modified concurrently", e.Resource, e.ID)
}

// ErrInvalidTerm indicates the EMI calculator was called with a non-positive
// tenure.
type ErrInvalidTerm struct {
	Tenure int
}

func (e *ErrInvalidTerm) Error() string {
	return fmt.Sprintf("invalid tenure: %d months (must be > 0)", e.Tenure)
}
