package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when the trip table lacks a required column
	ErrMissingField = errors.New("missing field")
	// ErrInvalidCoordinate is returned when a coordinate is null or out of range
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// MissingFieldError names the absent column
type MissingFieldError struct {
	Column string
}

// Error implements the error interface
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Column)
}

// Unwrap allows errors.Is(err, ErrMissingField)
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// CoordinateError identifies the trip and the coordinate that could not be used
type CoordinateError struct {
	Row   int
	Field string
	Value float64
}

// Error implements the error interface
func (e *CoordinateError) Error() string {
	return fmt.Sprintf("row %d: invalid %s (%v)", e.Row, e.Field, e.Value)
}

// Unwrap allows errors.Is(err, ErrInvalidCoordinate)
func (e *CoordinateError) Unwrap() error {
	return ErrInvalidCoordinate
}
