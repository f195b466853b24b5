package service

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "field and message",
			err:  &ValidationError{Field: "message", Message: "cannot be empty"},
			want: "validation error on field message: cannot be empty",
		},
		{
			name: "empty field",
			err:  &ValidationError{Field: "", Message: "invalid"},
			want: "validation error on field : invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	var err error = &ValidationError{Field: "message", Message: "cannot be empty"}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("ValidationError should not match ErrNotFound")
	}
}

func TestWrapError(t *testing.T) {
	original := errors.New("original error")

	tests := []struct {
		name     string
		err      error
		sentinel error
		msg      string
		wantNil  bool
		wantMsg  string
	}{
		{
			name:     "nil error",
			sentinel: ErrExternalService,
			msg:      "context",
			wantNil:  true,
		},
		{
			name:     "external service",
			err:      original,
			sentinel: ErrExternalService,
			msg:      "failed to get LLM response",
			wantMsg:  "failed to get LLM response: external service error: original error",
		},
		{
			name:     "not found",
			err:      original,
			sentinel: ErrNotFound,
			msg:      "chat",
			wantMsg:  "chat: not found: original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, tt.sentinel, tt.msg)
			if tt.wantNil {
				if got != nil {
					t.Errorf("WrapError() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("WrapError() = nil, want error")
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("WrapError() = %v, want %v", got.Error(), tt.wantMsg)
			}
			if !errors.Is(got, tt.err) {
				t.Error("WrapError() should wrap original error")
			}
			if !errors.Is(got, tt.sentinel) {
				t.Error("WrapError() should wrap sentinel")
			}
		})
	}
}
