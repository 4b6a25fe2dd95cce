package bars

import (
	"errors"
	"fmt"
)

// ErrInvalidCoordinates matches every InvalidCoordinatesError via errors.Is.
var ErrInvalidCoordinates = errors.New("Coordonnées invalides")

// InvalidCoordinatesError reports a query coordinate that is missing, not a
// number, not finite or out of range. It is a client error.
type InvalidCoordinatesError struct {
	Field  string
	Reason string
}

func (e *InvalidCoordinatesError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidCoordinates, e.Field, e.Reason)
}

func (e *InvalidCoordinatesError) Is(target error) bool {
	return target == ErrInvalidCoordinates
}

func NewInvalidCoordinatesError(field, reason string) *InvalidCoordinatesError {
	return &InvalidCoordinatesError{
		Field:  field,
		Reason: reason,
	}
}
