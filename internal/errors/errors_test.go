package errors

import (
	"fmt"
	"testing"
)

func TestOrdenError_Error(t *testing.T) {
	err := &OrdenError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "note not found",
	}

	expected := "NOT_FOUND: note not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidArguments(t *testing.T) {
	err := NewInvalidArguments("folderId is required")

	if err.Code != ErrInvalidArguments {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidArguments)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "folderId is required" {
		t.Errorf("Message = %q, want %q", err.Message, "folderId is required")
	}
}

func TestNewUnknownTool(t *testing.T) {
	err := NewUnknownTool("rename_note")

	if err.Code != ErrUnknownTool {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnknownTool)
	}
	if err.Details["tool"] != "rename_note" {
		t.Errorf("Details[tool] = %v, want %q", err.Details["tool"], "rename_note")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("note", "cell-biology")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Message != "note not found: cell-biology" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["noteId"] != "cell-biology" {
		t.Errorf("Details[noteId] = %v, want %q", err.Details["noteId"], "cell-biology")
	}
}

func TestNewAlreadyExists(t *testing.T) {
	err := NewAlreadyExists("folder", "chemistry")

	if err.Code != ErrAlreadyExists {
		t.Errorf("Code = %q, want %q", err.Code, ErrAlreadyExists)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["folderId"] != "chemistry" {
		t.Errorf("Details[folderId] = %v", err.Details["folderId"])
	}
}

func TestNewUpstream(t *testing.T) {
	err := NewUpstream("Web search failed: timeout", "Try a different search query")
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Details["suggestion"] != "Try a different search query" {
		t.Errorf("Details[suggestion] = %v", err.Details["suggestion"])
	}

	bare := NewUpstream("down", "")
	if bare.Details != nil {
		t.Errorf("Details = %v, want nil", bare.Details)
	}
}

func TestNewNotConfigured(t *testing.T) {
	err := NewNotConfigured("ANTHROPIC_API_KEY")

	if err.Code != ErrNotConfigured {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotConfigured)
	}
	want := "The notes agent is not configured. Please set the ANTHROPIC_API_KEY environment variable."
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Code != ErrInternal || err.Status != 500 {
		t.Errorf("got %q/%d, want INTERNAL/500", err.Code, err.Status)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	if NewInternal(nil).Message != "internal error" {
		t.Errorf("nil error should produce generic message")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound("note", "x"), ErrNotFound, true},
		{"different code", NewNotFound("note", "x"), ErrInternal, false},
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
