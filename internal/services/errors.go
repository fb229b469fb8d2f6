package services

import (
	"errors"
	"fmt"

	"eventbooking/internal/domain"
)

// passthrough lists the errors callers are expected to classify themselves.
var passthrough = []error{
	domain.ErrNotFound,
	domain.ErrInvalidInput,
	domain.ErrInvalidID,
	domain.ErrForbidden,
	domain.ErrConflict,
	domain.ErrCapacityExceeded,
	domain.ErrDuplicateEmail,
	domain.ErrInvalidCredentials,
	domain.ErrUnavailable,
}

// storageErr returns domain errors unchanged and wraps anything else as ErrUnavailable.
func storageErr(op string, err error) error {
	for _, target := range passthrough {
		if errors.Is(err, target) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}
