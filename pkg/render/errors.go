package render

import (
	"errors"
	"fmt"
)

// Common errors returned by renderers.
var (
	// ErrUnsupportedLayout is returned for HTML that needs absolute positioning.
	ErrUnsupportedLayout = errors.New("unsupported layout: position absolute")

	// ErrInvalidOptions is matched by every *OptionsError.
	ErrInvalidOptions = errors.New("invalid render options")

	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// OptionsError reports an unusable Options value.
type OptionsError struct {
	Field string
	Value Options
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid render %s: %dx%d %q", e.Field, e.Value.Width, e.Value.Height, e.Value.Format)
}

// Is reports ErrInvalidOptions as a match.
func (e *OptionsError) Is(target error) bool {
	return target == ErrInvalidOptions
}

// ErrorClass represents a classification of render service failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx errors; the HTML or options were rejected.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// RenderError represents a failed call to the render service.
type RenderError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("render %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// shouldRetry determines if an error class is worth another attempt.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// classifyStatus maps an HTTP status to an error class ("" for success).
func classifyStatus(status int) ErrorClass {
	switch {
	case status == 429:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
