package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "with message",
			err:  NewValidationError("filePath is required"),
			want: "filePath is required",
		},
		{
			name: "kind only",
			err:  &ValidationError{Kind: ErrForbidden},
			want: "forbidden",
		},
		{
			name: "empty",
			err:  &ValidationError{},
			want: "invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{
			name:   "bad request",
			err:    NewValidationError("bad"),
			target: ErrInvalidInput,
		},
		{
			name:   "forbidden",
			err:    NewForbiddenError("Link has expired"),
			target: ErrForbidden,
		},
		{
			name:   "wrapped",
			err:    fmt.Errorf("upload: %w", NewValidationError("bad type")),
			target: ErrInvalidInput,
		},
		{
			name:   "nil kind defaults to invalid input",
			err:    &ValidationError{Message: "x"},
			target: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.target)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	msg, ok := UserMessage(fmt.Errorf("wrapped: %w", NewForbiddenError("Download limit reached")))
	if !ok || msg != "Download limit reached" {
		t.Errorf("UserMessage() = (%q, %v), want (%q, true)", msg, ok, "Download limit reached")
	}

	if _, ok := UserMessage(errors.New("boom")); ok {
		t.Error("UserMessage() on plain error should report false")
	}
}

func TestGetRetryAfter(t *testing.T) {
	d, ok := GetRetryAfter(fmt.Errorf("x: %w", NewRetryableError(ErrNotConnected, 3*time.Second)))
	if !ok || d != 3*time.Second {
		t.Errorf("GetRetryAfter() = (%v, %v), want (3s, true)", d, ok)
	}

	if _, ok := GetRetryAfter(errors.New("plain")); ok {
		t.Error("GetRetryAfter() on plain error should report false")
	}

	if !errors.Is(NewRetryableError(ErrNotConnected, 0), ErrNotConnected) {
		t.Error("RetryableError should unwrap to ErrNotConnected")
	}
}
