// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Input errors
	ErrPairRequired     = &Error{Code: "PAIR_REQUIRED", Message: "pair is required"}
	ErrPairNotFound     = &Error{Code: "PAIR_NOT_FOUND", Message: "pair not in catalog"}
	ErrUnknownTimeframe = &Error{Code: "UNKNOWN_TIMEFRAME", Message: "timeframe not offered"}
	ErrImageRequired    = &Error{Code: "IMAGE_REQUIRED", Message: "chart image is required"}
	ErrUnsupportedImage = &Error{Code: "UNSUPPORTED_IMAGE", Message: "chart image must be PNG, JPEG or WEBP"}
	ErrBadRequest       = &Error{Code: "BAD_REQUEST", Message: "malformed request"}
	ErrNotFound         = &Error{Code: "NOT_FOUND", Message: "not found"}
	ErrUnauthorized     = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}

	// Analysis errors
	ErrAnalysisFailed  = &Error{Code: "ANALYSIS_FAILED", Message: "analysis failed"}
	ErrInvalidResponse = &Error{Code: "INVALID_RESPONSE", Message: "invalid response structure from AI"}
	ErrAnalysisTimeout = &Error{Code: "ANALYSIS_TIMEOUT", Message: "analysis is taking longer than expected"}

	// Catalog errors
	ErrCatalogInvalid = &Error{Code: "CATALOG_INVALID", Message: "pair catalog invalid"}

	// Notifier errors
	ErrNotifierFailed = &Error{Code: "NOTIFIER_FAILED", Message: "notifier failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// LLM errors
	ErrLLMFailed = &Error{Code: "LLM_FAILED", Message: "LLM request failed"}
)
