package domain

import (
	"errors"
	"fmt"
	"time"
)

// Common domain errors
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrRateLimited   = errors.New("too many attempts")

	// Share link errors
	ErrShareNotFound = fmt.Errorf("share link %w", ErrNotFound)

	// Submission errors
	ErrSubmissionNotFound = fmt.Errorf("submission %w", ErrNotFound)

	// Remote storage errors
	ErrInvalidPath  = errors.New("invalid path")
	ErrNotConnected = errors.New("remote storage not connected")

	// Catalogue errors
	ErrCatalogueParse = errors.New("catalogue file could not be parsed")
)

// ValidationError carries a user-facing message for a rejected request.
// It unwraps to ErrInvalidInput unless another kind is given.
type ValidationError struct {
	Kind    error
	Message string
}

// Error returns the message
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return ErrInvalidInput.Error()
}

// Unwrap returns the error kind
func (e *ValidationError) Unwrap() error {
	if e.Kind == nil {
		return ErrInvalidInput
	}
	return e.Kind
}

// NewValidationError creates a bad-request error with a message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Kind: ErrInvalidInput, Message: message}
}

// NewForbiddenError creates a forbidden error with a message
func NewForbiddenError(message string) *ValidationError {
	return &ValidationError{Kind: ErrForbidden, Message: message}
}

// UserMessage returns the user-facing message of err if it carries one
func UserMessage(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message, true
	}
	return "", false
}

// RetryableError represents an error that should trigger a retry.
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
}

// Error returns the error message
func (e *RetryableError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "retryable error"
}

// Unwrap returns the underlying error
func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error, retryAfter time.Duration) *RetryableError {
	return &RetryableError{Err: err, RetryAfter: retryAfter}
}

// GetRetryAfter returns the retry duration if the error is retryable
func GetRetryAfter(err error) (time.Duration, bool) {
	var re *RetryableError
	if errors.As(err, &re) {
		return re.RetryAfter, true
	}
	return 0, false
}
