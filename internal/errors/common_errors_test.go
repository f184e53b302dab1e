package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeAuth,
				Message: "Invalid username or password",
			},
			wantMessage: "[AUTH] Invalid username or password",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeNetwork,
				Message: "Dataset download failed",
				Cause:   fmt.Errorf("connection refused"),
			},
			wantMessage: "[NETWORK] Dataset download failed: connection refused",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type: ErrTypeValidation,
			},
			wantMessage: "[VALIDATION] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	root := errors.New("table does not exist")
	appErr := NewStorageError("Database operation failed", root)

	assert.Same(t, root, appErr.Unwrap())
	assert.True(t, errors.Is(appErr, root))
	assert.Nil(t, NewConfigError("bad", nil).Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	appErr := &AppError{Type: ErrTypeData, Message: "Dataset has a missing or invalid station coordinate"}

	got := appErr.WithContext("row", 17).WithContext("field", "end_station_latitude")

	require.Same(t, appErr, got)
	assert.Equal(t, 17, got.Context["row"])
	assert.Equal(t, "end_station_latitude", got.Context["field"])
}

func TestNewAppError(t *testing.T) {
	cause := errors.New("yaml: line 3")
	got := NewConfigError("Configuration is invalid", cause)

	assert.Equal(t, ErrTypeConfig, got.Type)
	assert.Equal(t, "Configuration is invalid", got.Message)
	assert.Same(t, cause, got.Cause)
	assert.NotNil(t, got.Context)
}

func TestErrorType_ExitCode(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{ErrTypeInternal, 1},
		{ErrTypeConfig, 2},
		{ErrTypeAuth, 3},
		{ErrTypeNetwork, 4},
		{ErrTypeData, 7},
		{ErrTypePermission, 10},
		{ErrTypeCancelled, 130},
		{ErrorType("UNKNOWN"), 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errType.ExitCode())
		})
	}
}
