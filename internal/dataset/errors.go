package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the dataset file does not exist
	ErrNotFound = errors.New("dataset not found")
	// ErrBadStatus is returned when the server answers with a non-200 status
	ErrBadStatus = errors.New("unexpected HTTP status")
	// ErrInvalidPayload is returned when the body is not a JSON array of objects
	ErrInvalidPayload = errors.New("invalid dataset payload")
)

// StatusError carries the status code of a failed download
type StatusError struct {
	URL  string
	Code int
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Unwrap allows errors.Is(err, ErrBadStatus)
func (e *StatusError) Unwrap() error {
	return ErrBadStatus
}
