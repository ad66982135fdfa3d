// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Registry / resolution errors
const (
	ErrCodeOperationNotFound      ErrorCode = "OPERATION_NOT_FOUND"
	ErrCodeMissingPathParameter   ErrorCode = "MISSING_PATH_PARAMETER"
	ErrCodeInvalidOperationConfig ErrorCode = "INVALID_OPERATION_CONFIG"
)

// Remote API errors
const (
	ErrCodeInfomaniakAPIError   ErrorCode = "INFOMANIAK_API_ERROR"
	ErrCodeInfomaniakAPITimeout ErrorCode = "INFOMANIAK_API_TIMEOUT"
	ErrCodeAuthentication       ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeTokenRefreshFailed   ErrorCode = "TOKEN_REFRESH_FAILED"
)

// Job input errors
const (
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
)

// Generic codes
const (
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError reports whether err (or anything it wraps) is a StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewOperationNotFoundError reports a (resource, operation) pair missing from a node registry.
func NewOperationNotFoundError(node, resource, operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOperationNotFound,
		Message:   "Operation not found in registry",
		Details:   fmt.Sprintf("node: %s, resource: %q, operation: %q", node, resource, operation),
		Retryable: false,
		Metadata: map[string]interface{}{
			"node":      node,
			"resource":  resource,
			"operation": operation,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingPathParameterError reports an unresolved URL placeholder.
func NewMissingPathParameterError(placeholder, inputKey string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingPathParameter,
		Message:   fmt.Sprintf("missing required path parameter %q", placeholder),
		Details:   fmt.Sprintf("placeholder: %s, inputKey: %s", placeholder, inputKey),
		Retryable: false,
		Metadata: map[string]interface{}{
			"placeholder": placeholder,
			"inputKey":    inputKey,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidOperationConfigError reports a malformed operation definition.
func NewInvalidOperationConfigError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidOperationConfig,
		Message:   "Invalid operation definition",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInfomaniakAPIError wraps a failed API call. Server errors and throttling are retryable.
func NewInfomaniakAPIError(operation string, statusCode int, err error) *StandardError {
	retryable := statusCode == 0 || statusCode == 429 || statusCode >= 500
	return &StandardError{
		Code:      ErrCodeInfomaniakAPIError,
		Message:   fmt.Sprintf("Infomaniak API request failed for %s", operation),
		Details:   err.Error(),
		Retryable: retryable,
		Metadata: map[string]interface{}{
			"operation":  operation,
			"statusCode": statusCode,
		},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInfomaniakAPITimeoutError creates a retryable timeout error.
func NewInfomaniakAPITimeoutError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInfomaniakAPITimeout,
		Message:   fmt.Sprintf("Infomaniak API timeout for %s", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTokenRefreshFailedError creates a retryable OAuth2 token error.
func NewTokenRefreshFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenRefreshFailed,
		Message:   "OAuth2 token refresh failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInputParsingFailedError creates a non-retryable job input error.
func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewValidationFailedError creates a non-retryable job validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Job input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthentication,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes caught by boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeOperationNotFound:      "OPERATION_NOT_FOUND",
	ErrCodeMissingPathParameter:   "MISSING_PATH_PARAMETER",
	ErrCodeInvalidOperationConfig: "INVALID_OPERATION_CONFIG",
	ErrCodeInfomaniakAPIError:     "INFOMANIAK_API_ERROR",
	ErrCodeInfomaniakAPITimeout:   "INFOMANIAK_API_TIMEOUT",
	ErrCodeAuthentication:         "AUTHENTICATION_ERROR",
	ErrCodeTokenRefreshFailed:     "TOKEN_REFRESH_FAILED",
	ErrCodeInputParsingFailed:     "INPUT_PARSING_FAILED",
	ErrCodeValidationFailed:       "VALIDATION_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeInfomaniakAPIError,
		ErrCodeExternalService,
		ErrCodeTokenRefreshFailed:
		return 3

	case ErrCodeInfomaniakAPITimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0 // configuration and input errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if status, ok := stdErr.Metadata["statusCode"]; ok {
		vars["statusCode"] = status
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "OPERATION") || strings.Contains(codeStr, "PATH_PARAMETER"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "AUTHENTICATION") || strings.Contains(codeStr, "TOKEN"):
		return "AUTH"
	case strings.Contains(codeStr, "INFOMANIAK") || strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "API"
	case strings.Contains(codeStr, "INPUT") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
