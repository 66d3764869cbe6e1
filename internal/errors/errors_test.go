package errors

import (
	"fmt"
	"testing"
)

func TestTokimeError_Error(t *testing.T) {
	err := &TokimeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "stopwatch not found",
	}

	expected := "NOT_FOUND: stopwatch not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("id is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "id is required" {
		t.Errorf("Message = %q, want %q", err.Message, "id is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("session", "ses_1")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Message != "session not found: ses_1" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["kind"] != "session" || err.Details["id"] != "ses_1" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestNewFileNotFound(t *testing.T) {
	err := NewFileNotFound("/tmp/backup.json")

	if err.Code != ErrFileNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrFileNotFound)
	}
	if err.Details["path"] != "/tmp/backup.json" {
		t.Errorf("Details[path] = %v", err.Details["path"])
	}
}

func TestNewAlreadyRunning(t *testing.T) {
	err := NewAlreadyRunning("sw_1")

	if err.Code != ErrAlreadyRunning {
		t.Errorf("Code = %q, want %q", err.Code, ErrAlreadyRunning)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewNotRunning(t *testing.T) {
	err := NewNotRunning("sw_1")

	if err.Code != ErrNotRunning {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotRunning)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewInvalidImportFile(t *testing.T) {
	err := NewInvalidImportFile("not a json object")

	if err.Code != ErrInvalidImportFile {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidImportFile)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
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
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound("stopwatch", "x"), ErrNotFound, true},
		{"different code", NewNotFound("stopwatch", "x"), ErrInternal, false},
		{"wrapped", fmt.Errorf("start: %w", NewAlreadyRunning("x")), ErrAlreadyRunning, true},
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
