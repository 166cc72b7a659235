package llm

import (
	"context"
	"fmt"
)

// Prompt is a system/user instruction pair with an output cap.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// ChainPrompt describes a two-turn exchange: turn one asks for open-ended
// analysis, turn two asks to reformat it.
type ChainPrompt struct {
	System     string
	User1      string
	MaxTokens1 int
	User2      string
	MaxTokens2 int
}

// ChainError identifies which operation and which turn of an exchange failed.
type ChainError struct {
	Tag  string
	Turn int
	Err  error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%s: turn %d: %v", e.Tag, e.Turn, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// Exchange is the conversation state threaded through a chain. It only grows.
type Exchange struct {
	messages []Message
}

// NewExchange starts a conversation with a system message.
func NewExchange(system string) *Exchange {
	return &Exchange{messages: []Message{{Role: RoleSystem, Content: system}}}
}

// Append adds a message to the conversation.
func (x *Exchange) Append(role Role, content string) {
	x.messages = append(x.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the conversation so far.
func (x *Exchange) Messages() []Message {
	out := make([]Message, len(x.messages))
	copy(out, x.messages)
	return out
}

// Composer builds exchanges and sends them to a Client.
type Composer struct {
	client Client
	model  string
}

// NewComposer creates a composer that sends requests for model.
func NewComposer(client Client, model string) *Composer {
	return &Composer{client: client, model: model}
}

// Ask sends a single system+user turn.
func (c *Composer) Ask(ctx context.Context, p Prompt, tag string) (string, error) {
	x := NewExchange(p.System)
	x.Append(RoleUser, p.User)

	reply, err := c.send(ctx, x, p.MaxTokens)
	if err != nil {
		return "", &ChainError{Tag: tag, Turn: 1, Err: err}
	}
	return reply, nil
}

// Chain runs a two-turn exchange. The first reply is appended to the
// conversation before the second user message, and the whole conversation is
// resent. Only the second reply is returned; a failure on either turn returns
// no text.
func (c *Composer) Chain(ctx context.Context, p ChainPrompt, tag string) (string, error) {
	x := NewExchange(p.System)
	x.Append(RoleUser, p.User1)

	first, err := c.send(ctx, x, p.MaxTokens1)
	if err != nil {
		return "", &ChainError{Tag: tag, Turn: 1, Err: err}
	}

	x.Append(RoleAssistant, first)
	x.Append(RoleUser, p.User2)

	second, err := c.send(ctx, x, p.MaxTokens2)
	if err != nil {
		return "", &ChainError{Tag: tag, Turn: 2, Err: err}
	}
	return second, nil
}

func (c *Composer) send(ctx context.Context, x *Exchange, maxTokens int) (string, error) {
	reply, err := c.client.Complete(ctx, Request{
		Model:     c.model,
		Messages:  x.Messages(),
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
