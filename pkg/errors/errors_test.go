package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeOutOfRange, "row %d outside [0, %d)", 5, 3)

	if err.Code != ErrCodeOutOfRange {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeOutOfRange)
	}

	if err.Message != "row 5 outside [0, 3)" {
		t.Errorf("Message = %v, want %v", err.Message, "row 5 outside [0, 3)")
	}

	expected := "OUT_OF_RANGE: row 5 outside [0, 3)"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeMakeMeProxy, cause, "read item")

	if err.Code != ErrCodeMakeMeProxy {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMakeMeProxy)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
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
			err:      New(ErrCodeNotInGroup, "test"),
			code:     ErrCodeNotInGroup,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeNotInGroup, "test"),
			code:     ErrCodeOutOfRange,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeMakeMeProxy, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeMakeMeProxy,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeMakeMeProxy, New(ErrCodeCyclicExpression, "inner"), "outer"),
			code:     ErrCodeCyclicExpression,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("set owner: %w", New(ErrCodeAlreadyActive, "owner set")),
			code:     ErrCodeAlreadyActive,
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
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeAlreadyActive, "test"),
			expected: ErrCodeAlreadyActive,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNotImplemented(t *testing.T) {
	err := NotImplemented("Locator.Mul")
	if !Is(err, ErrCodeNotImplementedYet) {
		t.Errorf("NotImplemented() code = %v, want %v", err.Code, ErrCodeNotImplementedYet)
	}
}
