package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a wxdash error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrInvalidSelection   ErrorCode = "INVALID_SELECTION"   // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFetchFailure       ErrorCode = "FETCH_FAILURE"       // 502
	ErrOfflineUnavailable ErrorCode = "OFFLINE_UNAVAILABLE" // 503
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// WxError represents a structured error with code, status, and details.
type WxError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// cause is kept for logging and errors.Is/As chains; it is never shown to users.
	cause error
}

// Error implements the error interface.
func (e *WxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *WxError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *WxError {
	return &WxError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidSelection creates a 400 error for text that does not resolve to
// a directory entry.
func NewInvalidSelection(text string) *WxError {
	return &WxError{
		Code:    ErrInvalidSelection,
		Status:  400,
		Message: "Please select a valid district from the suggestions.",
		Details: map[string]any{"input": text},
	}
}

// NewNotFound creates a 404 error for a missing resource.
func NewNotFound(identifier string) *WxError {
	return &WxError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFetchFailure creates a 502 error for a failed upstream or API fetch.
func NewFetchFailure(err error) *WxError {
	return &WxError{
		Code:    ErrFetchFailure,
		Status:  502,
		Message: "Failed to connect to the server. Please check your internet connection.",
		cause:   err,
	}
}

// NewOfflineUnavailable creates a 503 error for a fetch skipped while offline.
func NewOfflineUnavailable() *WxError {
	return &WxError{
		Code:    ErrOfflineUnavailable,
		Status:  503,
		Message: "Offline mode: weather data is unavailable until the connection returns.",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *WxError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &WxError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if err, or any error it wraps, is a WxError with the given code.
func Is(err error, code ErrorCode) bool {
	var wErr *WxError
	if stderrors.As(err, &wErr) {
		return wErr.Code == code
	}
	return false
}

// As returns the WxError in err's chain, or nil.
func As(err error) *WxError {
	var wErr *WxError
	if stderrors.As(err, &wErr) {
		return wErr
	}
	return nil
}
