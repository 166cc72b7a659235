package provider

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapError_Known(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
		hint     string
	}{
		{
			name:     "invalid repo",
			err:      fmt.Errorf("%w: not a repo", ErrInvalidRepo),
			sentinel: ErrInvalidRepo,
			message:  "Invalid repository",
			hint:     "owner/repo",
		},
		{
			name:     "auth sentinel",
			err:      ErrAuthFailed,
			sentinel: ErrAuthFailed,
			message:  "Authentication failed",
			hint:     "GITHUB_TOKEN",
		},
		{
			name:     "wrapped auth",
			err:      fmt.Errorf("fetch issues: %w", ErrAuthFailed),
			sentinel: ErrAuthFailed,
			message:  "Authentication failed",
			hint:     "LLM_API_KEY",
		},
		{
			name:     "rate limited",
			err:      fmt.Errorf("%w: GitHub API error 403", ErrRateLimited),
			sentinel: ErrRateLimited,
			message:  "GitHub rate limit reached",
			hint:     "authenticated token",
		},
		{
			name:     "not found",
			err:      fmt.Errorf("user profile: %w", ErrNotFound),
			sentinel: ErrNotFound,
			message:  "Repository or user not found",
			hint:     "you have access",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err)

			userErr, ok := wrapped.(*UserError)
			if !ok {
				t.Fatalf("WrapError() returned %T, want *UserError", wrapped)
			}
			if userErr.Message != tt.message {
				t.Errorf("Message = %q, want %q", userErr.Message, tt.message)
			}
			if !strings.Contains(userErr.Hint, tt.hint) {
				t.Errorf("Hint should contain %q, got %q", tt.hint, userErr.Hint)
			}
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(wrapped, %v) = false, want true", tt.sentinel)
			}
		})
	}
}

func TestWrapError_Passthrough(t *testing.T) {
	for _, err := range []error{
		ErrNoContent,
		errors.New("something went wrong"),
		errors.New("GitHub API error 500: boom"),
	} {
		if wrapped := WrapError(err); wrapped != err {
			t.Errorf("WrapError(%v) = %v, want original error", err, wrapped)
		}
	}

	if WrapError(nil) != nil {
		t.Error("WrapError(nil) should be nil")
	}
}

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name    string
		userErr *UserError
		want    []string
	}{
		{
			name:    "message only",
			userErr: &UserError{Message: "Something went wrong"},
			want:    []string{"Something went wrong"},
		},
		{
			name:    "message with hint",
			userErr: &UserError{Message: "Something went wrong", Hint: "Try this"},
			want:    []string{"Something went wrong", "Hint: Try this"},
		},
		{
			name:    "message with hint and error",
			userErr: &UserError{Message: "Something went wrong", Hint: "Try this", Err: errors.New("original")},
			want:    []string{"Something went wrong", "Hint: Try this", "Details: original"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.userErr.Error()

			// parts must appear in order
			last := -1
			for _, part := range tt.want {
				idx := strings.Index(got, part)
				if idx <= last {
					t.Errorf("Error() = %q, want %q after index %d", got, part, last)
				}
				last = idx
			}
		})
	}
}

func TestUserError_Unwrap(t *testing.T) {
	userErr := &UserError{Message: "x", Err: ErrAuthFailed}
	if userErr.Unwrap() != ErrAuthFailed {
		t.Errorf("Unwrap() = %v, want ErrAuthFailed", userErr.Unwrap())
	}
	if (&UserError{Message: "x"}).Unwrap() != nil {
		t.Error("Unwrap() without Err should be nil")
	}
}
