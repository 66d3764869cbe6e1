package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Tokime error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound      ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrAlreadyRunning    ErrorCode = "ALREADY_RUNNING"     // 409
	ErrNotRunning        ErrorCode = "NOT_RUNNING"         // 409
	ErrInvalidImportFile ErrorCode = "INVALID_IMPORT_FILE" // 422
	ErrInternal          ErrorCode = "INTERNAL"            // 500
)

// TokimeError represents a structured error with code, status, and details.
type TokimeError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TokimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TokimeError {
	return &TokimeError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an unknown stopwatch or session.
// kind is "stopwatch" or "session".
func NewNotFound(kind, id string) *TokimeError {
	return &TokimeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *TokimeError {
	return &TokimeError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewAlreadyRunning creates a 409 error when a stopwatch already has an open session.
func NewAlreadyRunning(id string) *TokimeError {
	return &TokimeError{
		Code:    ErrAlreadyRunning,
		Status:  409,
		Message: fmt.Sprintf("stopwatch is already running: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewNotRunning creates a 409 error when there is no open session to stop.
func NewNotRunning(id string) *TokimeError {
	return &TokimeError{
		Code:    ErrNotRunning,
		Status:  409,
		Message: fmt.Sprintf("stopwatch is not running: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewInvalidImportFile creates a 422 error for a backup file that cannot be applied.
func NewInvalidImportFile(msg string) *TokimeError {
	return &TokimeError{
		Code:    ErrInvalidImportFile,
		Status:  422,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TokimeError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TokimeError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a TokimeError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TokimeError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}
