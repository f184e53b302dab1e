package pipeline

import (
	"errors"
	"fmt"
)

// ErrorType classifies a stage failure
type ErrorType string

const (
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeInvalidState ErrorType = "invalid_state"
)

// ErrMissingInput is returned by a stage whose predecessor left no data
var ErrMissingInput = errors.New("stage input missing")

// StageError wraps the failure that aborted a run
type StageError struct {
	Type    ErrorType
	Stage   string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *StageError) Error() string {
	if e == nil {
		return "unknown stage error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Type, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewExecutionError reports a stage that ran and failed
func NewExecutionError(stage string, cause error) *StageError {
	return &StageError{
		Type:    ErrorTypeExecution,
		Stage:   stage,
		Message: "stage execution failed",
		Cause:   cause,
	}
}

// NewCancellationError reports a run stopped before stage started
func NewCancellationError(stage string, cause error) *StageError {
	return &StageError{
		Type:    ErrorTypeCancellation,
		Stage:   stage,
		Message: "run cancelled",
		Cause:   cause,
	}
}

// NewInvalidStateError reports a stage that found the run state unusable
func NewInvalidStateError(stage, message string) *StageError {
	return &StageError{
		Type:    ErrorTypeInvalidState,
		Stage:   stage,
		Message: message,
		Cause:   ErrMissingInput,
	}
}

// SkipError tells the runner the stage had nothing to do
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "stage skipped: " + e.Reason
}

// Skip returns the error a stage uses to mark itself skipped
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// IsStageError reports whether err carries a StageError of the given type
func IsStageError(err error, t ErrorType) bool {
	var se *StageError
	return errors.As(err, &se) && se.Type == t
}
