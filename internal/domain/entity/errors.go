package entity

import (
	"errors"
	"fmt"
)

var (
	// Task errors
	ErrTaskNotFound     = errors.New("task not found")
	ErrEmptyTaskTitle   = errors.New("task title cannot be empty")
	ErrInvalidTaskID    = errors.New("invalid task ID")
	ErrInvalidDateRange = errors.New("end date cannot be before start date")

	// Project errors
	ErrProjectNotFound  = errors.New("project not found")
	ErrEmptyProjectName = errors.New("project name cannot be empty")
	ErrInvalidColor     = errors.New("invalid color format")

	// Column errors
	ErrColumnNotFound = errors.New("column not found")

	// Dependency errors
	ErrInvalidDependencyType = errors.New("invalid dependency type")
	ErrSelfDependency        = errors.New("task cannot depend on itself")
	ErrDependencyNotFound    = errors.New("dependency not found")
	ErrTaskBlocked           = errors.New("task is blocked by incomplete tasks")

	// Change feed errors
	ErrInvalidEventType  = errors.New("invalid event type")
	ErrInvalidEntityKind = errors.New("invalid entity kind")
	ErrMissingPayload    = errors.New("change event payload is missing")

	// Board state errors
	ErrNotLoaded = errors.New("board has not finished loading")
)

var validationErrors = []error{
	ErrEmptyTaskTitle,
	ErrInvalidTaskID,
	ErrInvalidDateRange,
	ErrEmptyProjectName,
	ErrInvalidColor,
	ErrInvalidDependencyType,
	ErrSelfDependency,
}

// IsValidationError reports whether err was raised by local input validation.
// Validation errors are caught before any persistence call is issued.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// PersistenceError wraps a failure reported by the external data service.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err with the operation that produced it.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
