package errors

import (
	"context"
	"errors"
	"net/url"

	"bikereport/internal/analytics"
	"bikereport/internal/auth"
	"bikereport/internal/dataset"
	"bikereport/internal/report"
	"bikereport/internal/validation"
)

// Classify maps an error from any layer to an AppError carrying the message
// shown to the operator. The original error stays reachable through Unwrap.
// A nil error yields nil.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	t, message := classify(err)
	appErr = NewAppError(t, message, err)

	var coordinate *analytics.CoordinateError
	if errors.As(err, &coordinate) {
		appErr.WithContext("row", coordinate.Row).WithContext("field", coordinate.Field)
	}
	return appErr
}

func classify(err error) (ErrorType, string) {
	var (
		missing    *analytics.MissingFieldError
		coordinate *analytics.CoordinateError
		status     *dataset.StatusError
		asset      *report.AssetError
		urlErr     *url.Error
	)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrTypeCancelled, "Operation cancelled"

	case errors.Is(err, auth.ErrTooManyAttempts):
		return ErrTypeAuth, "Too many failed login attempts"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ErrTypeAuth, "Invalid username or password"
	case errors.Is(err, auth.ErrSessionInvalid):
		return ErrTypeAuth, "Session is invalid or expired, please log in again"
	case errors.Is(err, auth.ErrStoreUnavailable):
		return ErrTypeStorage, "Credential store is unavailable"
	case errors.Is(err, auth.ErrUserExists):
		return ErrTypeValidation, "User already exists"
	case errors.Is(err, auth.ErrInvalidInput):
		return ErrTypeValidation, "Username or password is empty or too long"

	case errors.As(err, &status):
		return ErrTypeNetwork, "Dataset download failed"
	case errors.As(err, &urlErr):
		return ErrTypeNetwork, "Dataset server could not be reached"
	case errors.Is(err, dataset.ErrInvalidPayload):
		return ErrTypeParsing, "Dataset response is not a list of trips"
	case errors.Is(err, dataset.ErrNotFound), errors.Is(err, validation.ErrFileNotFound):
		return ErrTypeNotFound, "Dataset file not found"

	case errors.As(err, &missing):
		return ErrTypeData, "Dataset is missing the column " + missing.Column
	case errors.As(err, &coordinate):
		return ErrTypeData, "Dataset has a missing or invalid station coordinate"

	case errors.As(err, &asset):
		return ErrTypeNotFound, "Report logo asset is missing or unreadable"
	case errors.Is(err, validation.ErrNotWorkbook):
		return ErrTypeParsing, "Input file is not an .xlsx workbook"
	case errors.Is(err, report.ErrOutputNotWritable):
		return ErrTypePermission, "Report file could not be written"
	case errors.Is(err, validation.ErrNotWritable):
		return ErrTypePermission, "Output directory is not writable"
	}

	return ErrTypeInternal, "Unexpected error"
}
