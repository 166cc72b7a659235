package llm

import (
	"context"
	"strings"
	"sync"
)

// MockClient replies from a script without network access. Replies are
// chosen by the first rule whose substring appears in the last user message;
// with no matching rule the Default reply is used. It records every request.
type MockClient struct {
	mu       sync.Mutex
	rules    []mockRule
	Default  string
	Err      error
	requests []Request
}

type mockRule struct {
	match string
	reply string
	err   error
}

// NewMockClient creates a mock that answers def when no rule matches.
func NewMockClient(def string) *MockClient {
	return &MockClient{Default: def}
}

// On registers a reply for user messages containing match.
func (m *MockClient) On(match, reply string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{match: match, reply: reply})
	return m
}

// Fail registers an error for user messages containing match.
func (m *MockClient) Fail(match string, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{match: match, err: err})
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := req
	copied.Messages = append([]Message(nil), req.Messages...)
	m.requests = append(m.requests, copied)

	if m.Err != nil {
		return "", m.Err
	}

	last := lastUser(req.Messages)
	for _, r := range m.rules {
		if strings.Contains(last, r.match) {
			if r.err != nil {
				return "", r.err
			}
			return m.reply(r.reply)
		}
	}
	return m.reply(m.Default)
}

func (m *MockClient) reply(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrEmptyReply
	}
	return s, nil
}

// Requests returns copies of all requests received so far.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func lastUser(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}
