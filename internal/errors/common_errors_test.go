package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{
			name:     "config error type",
			errType:  ErrTypeConfig,
			expected: "CONFIG",
		},
		{
			name:     "validation error type",
			errType:  ErrTypeValidation,
			expected: "VALIDATION",
		},
		{
			name:     "parsing error type",
			errType:  ErrTypeParsing,
			expected: "PARSING",
		},
		{
			name:     "storage error type",
			errType:  ErrTypeStorage,
			expected: "STORAGE",
		},
		{
			name:     "not found error type",
			errType:  ErrTypeNotFound,
			expected: "NOT_FOUND",
		},
		{
			name:     "usage error type",
			errType:  ErrTypeUsage,
			expected: "USAGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeConfig,
				Message: "unknown strategy",
			},
			expected: "[CONFIG] unknown strategy",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "numeric coercion failed",
				Cause:   fmt.Errorf("bad token"),
			},
			expected: "[PARSING] numeric coercion failed: bad token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewConfigError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))

	noCause := NewValidationError("standalone")
	assert.Nil(t, noCause.Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := NewConfigError("group strategy misconfigured", nil).
		WithContext("strategy", "group_median").
		WithContext("groupby_col", "segment")

	require.NotNil(t, err.Context)
	assert.Equal(t, "group_median", err.Context["strategy"])
	assert.Equal(t, "segment", err.Context["groupby_col"])
}

func TestAppError_WithContext_NilMap(t *testing.T) {
	err := &AppError{Type: ErrTypeUsage, Message: "transform before fit"}
	err = err.WithContext("method", "standard")

	require.NotNil(t, err.Context)
	assert.Equal(t, "standard", err.Context["method"])
}

func TestIsType(t *testing.T) {
	cfgErr := NewConfigError("bad policy", nil)
	wrapped := fmt.Errorf("running stage: %w", cfgErr)

	assert.True(t, IsType(cfgErr, ErrTypeConfig))
	assert.True(t, IsType(wrapped, ErrTypeConfig))
	assert.False(t, IsType(cfgErr, ErrTypeParsing))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeConfig))
	assert.False(t, IsType(nil, ErrTypeConfig))
}

func TestHelperConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{"config", NewConfigError("m", nil), ErrTypeConfig},
		{"validation", NewValidationError("m"), ErrTypeValidation},
		{"parsing", NewParsingError("m", nil), ErrTypeParsing},
		{"storage", NewStorageError("m", nil), ErrTypeStorage},
		{"not found", NewNotFoundError("column"), ErrTypeNotFound},
		{"usage", NewUsageError("m"), ErrTypeUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}

	assert.Contains(t, NewNotFoundError("column").Message, "column not found")
}
