package errors

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikereport/internal/analytics"
	"bikereport/internal/auth"
	"bikereport/internal/dataset"
	"bikereport/internal/report"
	"bikereport/internal/validation"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantMsg  string
	}{
		{"cancelled", fmt.Errorf("stage: %w", context.Canceled), ErrTypeCancelled, "Operation cancelled"},
		{"deadline", context.DeadlineExceeded, ErrTypeCancelled, "Operation cancelled"},
		{"too many attempts", fmt.Errorf("%w (3)", auth.ErrTooManyAttempts), ErrTypeAuth, "Too many failed login attempts"},
		{"bad credentials", auth.ErrInvalidCredentials, ErrTypeAuth, "Invalid username or password"},
		{"bad session", auth.ErrSessionInvalid, ErrTypeAuth, "Session is invalid or expired, please log in again"},
		{"store down", auth.ErrStoreUnavailable, ErrTypeStorage, "Credential store is unavailable"},
		{"duplicate user", fmt.Errorf("%w: user1", auth.ErrUserExists), ErrTypeValidation, "User already exists"},
		{"empty input", auth.ErrInvalidInput, ErrTypeValidation, "Username or password is empty or too long"},
		{"http status", &dataset.StatusError{URL: "http://x", Code: 503}, ErrTypeNetwork, "Dataset download failed"},
		{"unreachable", fmt.Errorf("failed to download dataset: %w", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("refused")}), ErrTypeNetwork, "Dataset server could not be reached"},
		{"bad payload", dataset.ErrInvalidPayload, ErrTypeParsing, "Dataset response is not a list of trips"},
		{"no dataset", fmt.Errorf("%w: data.xlsx", dataset.ErrNotFound), ErrTypeNotFound, "Dataset file not found"},
		{"missing column", &analytics.MissingFieldError{Column: analytics.ColDuration}, ErrTypeData, "Dataset is missing the column duration"},
		{"null coordinate", &analytics.CoordinateError{Row: 4, Field: analytics.ColEndLatitude}, ErrTypeData, "Dataset has a missing or invalid station coordinate"},
		{"logo", &report.AssetError{Path: "logo.jpg", Err: errors.New("no such file")}, ErrTypeNotFound, "Report logo asset is missing or unreadable"},
		{"output", fmt.Errorf("%w: permission denied", report.ErrOutputNotWritable), ErrTypePermission, "Report file could not be written"},
		{"missing input", fmt.Errorf("%w: in.xlsx", validation.ErrFileNotFound), ErrTypeNotFound, "Dataset file not found"},
		{"not a workbook", validation.ErrNotWorkbook, ErrTypeParsing, "Input file is not an .xlsx workbook"},
		{"output dir", validation.ErrNotWritable, ErrTypePermission, "Output directory is not writable"},
		{"unknown", errors.New("boom"), ErrTypeInternal, "Unexpected error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassifyKeepsAppError(t *testing.T) {
	cfgErr := NewConfigError("Configuration is invalid", errors.New("yaml"))
	wrapped := fmt.Errorf("startup: %w", cfgErr)

	assert.Same(t, cfgErr, Classify(wrapped))
}

func TestClassifyCoordinateContext(t *testing.T) {
	err := fmt.Errorf("[execution] analyze: %w", &analytics.CoordinateError{Row: 12, Field: analytics.ColStartLongitude})

	got := Classify(err)
	assert.Equal(t, 12, got.Context["row"])
	assert.Equal(t, analytics.ColStartLongitude, got.Context["field"])
	assert.ErrorIs(t, got, analytics.ErrInvalidCoordinate)
}
