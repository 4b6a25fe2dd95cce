package catalog

import "fmt"

// DatasetUnavailableError means the bar dataset could not be read or parsed.
// It is never returned to request handlers: the catalog degrades to empty.
type DatasetUnavailableError struct {
	Source string
	Err    error
}

func (e *DatasetUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bar dataset %s unavailable: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("bar dataset %s unavailable", e.Source)
}

func (e *DatasetUnavailableError) Unwrap() error {
	return e.Err
}

func NewDatasetUnavailableError(source string, err error) *DatasetUnavailableError {
	return &DatasetUnavailableError{
		Source: source,
		Err:    err,
	}
}

// MissingColumnError is returned by Parse when the header row lacks one of
// the required labels.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}
