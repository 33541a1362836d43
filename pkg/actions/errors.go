package actions

import (
	"errors"
	"fmt"
)

// Sentinel errors for the actions package.
var (
	// ErrInvalidMapping is returned when a registry mutation names a
	// gesture or action outside the fixed sets.
	ErrInvalidMapping = errors.New("actions: invalid gesture/action mapping")

	// ErrUnknownAction is returned when the runner has no body bound
	// for an action name.
	ErrUnknownAction = errors.New("actions: unknown action")
)

// MappingError carries the rejected key/value pair for caller display.
type MappingError struct {
	Gesture string
	Action  string
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	return fmt.Sprintf("actions: invalid mapping %q -> %q", e.Gesture, e.Action)
}

// Unwrap makes errors.Is(err, ErrInvalidMapping) work.
func (e *MappingError) Unwrap() error {
	return ErrInvalidMapping
}
