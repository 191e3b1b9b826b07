package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWxError_Error(t *testing.T) {
	err := &WxError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "district not found",
	}

	expected := "NOT_FOUND: district not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("district is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "district is required" {
		t.Errorf("Message = %q, want %q", err.Message, "district is required")
	}
}

func TestNewInvalidSelection(t *testing.T) {
	err := NewInvalidSelection("Atlantis")

	if err.Code != ErrInvalidSelection {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidSelection)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Details["input"] != "Atlantis" {
		t.Errorf("Details[input] = %v, want %q", err.Details["input"], "Atlantis")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("Kollam")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Details["identifier"] != "Kollam" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "Kollam")
	}
}

func TestNewFetchFailure_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewFetchFailure(cause)

	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	if err.Message == cause.Error() {
		t.Error("cause should not leak into the user-facing message")
	}
}

func TestNewOfflineUnavailable(t *testing.T) {
	err := NewOfflineUnavailable()

	if err.Code != ErrOfflineUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrOfflineUnavailable)
	}
	if err.Status != 503 {
		t.Errorf("Status = %d, want 503", err.Status)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	err = NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewOfflineUnavailable(), ErrOfflineUnavailable, true},
		{"different code", NewOfflineUnavailable(), ErrFetchFailure, false},
		{"wrapped", fmt.Errorf("load: %w", NewInvalidSelection("x")), ErrInvalidSelection, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	if As(fmt.Errorf("plain")) != nil {
		t.Error("As(plain) should be nil")
	}
	wrapped := fmt.Errorf("ctx: %w", NewNotFound("x"))
	if got := As(wrapped); got == nil || got.Code != ErrNotFound {
		t.Errorf("As(wrapped) = %v, want NOT_FOUND", got)
	}
}
