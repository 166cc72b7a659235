package provider

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailed  = errors.New("authentication failed")
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	ErrNoContent   = errors.New("no content")
	ErrInvalidRepo = errors.New("invalid owner/repo")
)

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts forge errors to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrInvalidRepo) {
		return &UserError{
			Message: "Invalid repository",
			Hint:    "Supported formats:\n  - owner/repo\n  - https://github.com/owner/repo\nThe repository must exist and be visible to your token.",
			Err:     err,
		}
	}

	if errors.Is(err, ErrAuthFailed) {
		return &UserError{
			Message: "Authentication failed",
			Hint:    "Check that your API token is valid and has the correct permissions.\n  - GitHub: Set GITHUB_TOKEN or pass a token\n  - Chat backend: Set LLM_API_KEY",
			Err:     err,
		}
	}

	if errors.Is(err, ErrRateLimited) {
		return &UserError{
			Message: "GitHub rate limit reached",
			Hint:    "Wait for the limit to reset, or use an authenticated token for a higher limit.",
			Err:     err,
		}
	}

	if errors.Is(err, ErrNotFound) {
		return &UserError{
			Message: "Repository or user not found",
			Hint:    "Check the owner, repository and username, and that you have access to the repository.",
			Err:     err,
		}
	}

	return err
}
