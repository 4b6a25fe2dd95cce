package directions

import (
	"errors"
	"fmt"
)

// ErrMissingEndpoints is returned when origin or destination is empty.
var ErrMissingEndpoints = errors.New("Coordonnées manquantes")

// APIError represents a failed call to the directions provider.
type APIError struct {
	Status string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("directions API error: %s: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("directions API error: %s", e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func NewAPIError(status string, err error) *APIError {
	return &APIError{
		Status: status,
		Err:    err,
	}
}
