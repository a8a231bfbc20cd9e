package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "test message: %s", "value")

	if err.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidConfig)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_CONFIG: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeScratchUnavailable, cause, "failed to create scratch dir")

	if err.Code != ErrCodeScratchUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeScratchUnavailable)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeChunkMissing,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeIntrospection, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeIntrospection,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("context: %w", New(ErrCodeChunkExists, "dup")),
			code:     ErrCodeChunkExists,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeNotFound, "x")); got != ErrCodeNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidFormat, "unknown format %q", "xml")); got != `unknown format "xml"` {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(Wrap(ErrCodeIntrospection, errors.New("boom"), "read field")); got != "read field: boom" {
		t.Errorf("UserMessage(wrapped) = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestAnnotation(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "unknown failure"},
		{errors.New("boom"), "boom"},
		{"panic text", "panic text"},
		{42, "42"},
		{New(ErrCodeIntrospection, "nil embedded pointer"), "nil embedded pointer"},
	}
	for _, tt := range tests {
		if got := Annotation(tt.in); got != tt.want {
			t.Errorf("Annotation(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
