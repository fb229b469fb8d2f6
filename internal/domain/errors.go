package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services, repositories and transports.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidID          = errors.New("invalid id")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrUnavailable        = errors.New("storage unavailable")
	ErrCapacityExceeded   = errors.New("not enough seats available")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CapacityExceededError rejects an admission that asks for more seats than remain.
// SeatsLeft is the availability observed under the event lock.
type CapacityExceededError struct {
	Requested int
	SeatsLeft int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("not enough seats available: requested %d, %d left", e.Requested, e.SeatsLeft)
}

// Is lets errors.Is(err, ErrCapacityExceeded) match.
func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// InvalidInputf returns an error wrapping ErrInvalidInput with a readable message.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
