package workflow

import (
	"errors"
	"fmt"

	"incubation-backend/internal/models"
)

// Failure kinds surfaced to callers. Every error returned by Service wraps
// exactly one of them, except unexpected storage failures.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// storeErr maps storage sentinels onto the workflow taxonomy.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound):
		return notFoundf("%s not found", what)
	case errors.Is(err, models.ErrStaleVersion):
		return conflictf("%s was modified by another request, reload and retry", what)
	case errors.Is(err, models.ErrDuplicate):
		return conflictf("%s conflicts with a concurrent change, reload and retry", what)
	}
	return fmt.Errorf("failed to access %s: %w", what, err)
}
