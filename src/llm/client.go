// Package llm talks to an OpenAI-compatible chat backend and composes the
// single-turn and two-turn exchanges used to summarize repository activity.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrEmptyReply is returned when the backend answers without content.
	ErrEmptyReply = errors.New("backend returned no content")
	// ErrBackend wraps transport and API failures from the chat service.
	ErrBackend = errors.New("chat backend error")
)

// Role tags a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Request is a full conversation sent to the backend in one call.
type Request struct {
	Model     string
	Messages  []Message
	MaxTokens int
}

// Client sends a conversation and returns the assistant's reply text.
// Implementations return ErrEmptyReply when the reply has no content.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
