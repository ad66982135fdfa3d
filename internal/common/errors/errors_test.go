package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsStandardError(t *testing.T) {
	base := NewValidationFailedError("bad input")
	wrapped := fmt.Errorf("record 2: %w", base)

	got, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)

	_, ok = AsStandardError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	stdErr := NewAuthenticationError("no token")
	assert.Same(t, stdErr, Normalize(stdErr))

	plain := stderrors.New("boom")
	normalized := Normalize(plain)
	assert.Equal(t, ErrCodeInternal, normalized.Code)
	assert.Equal(t, "boom", normalized.Details)
	assert.ErrorIs(t, normalized, plain)
}

func TestNewInfomaniakAPIError_Retryable(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{0, true},
		{400, false},
		{401, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			cause := stderrors.New("request failed")
			err := NewInfomaniakAPIError("GET /1/countries", tt.status, cause)

			assert.Equal(t, ErrCodeInfomaniakAPIError, err.Code)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.status, err.Metadata["statusCode"])
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestWithMetadata(t *testing.T) {
	err := NewMissingPathParameterError("account_id", "path_account_id").
		WithMetadata("recordIndex", 3)

	assert.Equal(t, 3, err.Metadata["recordIndex"])
	assert.Equal(t, "account_id", err.Metadata["placeholder"])

	bare := NewValidationFailedError("x").WithMetadata("k", "v")
	assert.Equal(t, "v", bare.Metadata["k"])
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:        "retryable api error",
			err:         NewInfomaniakAPIError("op", 502, stderrors.New("bad gateway")),
			wantCode:    "INFOMANIAK_API_ERROR",
			wantRetries: 3,
		},
		{
			name:        "client api error is not retried",
			err:         NewInfomaniakAPIError("op", 404, stderrors.New("not found")),
			wantCode:    "INFOMANIAK_API_ERROR",
			wantRetries: 0,
		},
		{
			name:        "timeout",
			err:         NewInfomaniakAPITimeoutError("op", context.DeadlineExceeded),
			wantCode:    "INFOMANIAK_API_TIMEOUT",
			wantRetries: 2,
		},
		{
			name:        "missing operation",
			err:         NewOperationNotFoundError("core-resources", "Countries", "Nope"),
			wantCode:    "OPERATION_NOT_FOUND",
			wantRetries: 0,
		},
		{
			name:        "unmapped code keeps its name",
			err:         NewInternalError(stderrors.New("x")),
			wantCode:    "INTERNAL_ERROR",
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)

			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)
			assert.Equal(t, tt.err.Message, bpmnErr.Message)

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_StatusCodeVariable(t *testing.T) {
	vars := ConvertToBPMNError(NewInfomaniakAPIError("op", 422, stderrors.New("invalid"))).ToErrorVariables()
	assert.Equal(t, 422, vars["statusCode"])

	vars = ConvertToBPMNError(NewValidationFailedError("x")).ToErrorVariables()
	assert.NotContains(t, vars, "statusCode")
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeOperationNotFound:    "CONFIGURATION",
		ErrCodeMissingPathParameter: "CONFIGURATION",
		ErrCodeAuthentication:       "AUTH",
		ErrCodeTokenRefreshFailed:   "AUTH",
		ErrCodeInfomaniakAPIError:   "API",
		ErrCodeTimeout:              "API",
		ErrCodeInputParsingFailed:   "VALIDATION",
		ErrCodeValidationFailed:     "VALIDATION",
		ErrCodeInternal:             "OTHER",
	}

	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeInfomaniakAPIError))
	assert.True(t, IsRetryableErrorCode(ErrCodeTokenRefreshFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeInfomaniakAPITimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeValidationFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeMissingPathParameter))
}
