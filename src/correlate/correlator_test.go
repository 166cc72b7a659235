package correlate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"devpulse-agent/src/budget"
	"devpulse-agent/src/llm"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/summary"
)

const fullReport = `{"impactful": "Fixed the scheduler.", "alignment": "Matches the roadmap.", "patterns": "", "synergy": "Paired with reviewers.", "significance": "High."}`

func newCorrelator(client llm.Client) *Correlator {
	return NewCorrelator(llm.NewComposer(client, "test-model"), logger.NewSilentLogger())
}

func TestCorrelate_JoinsFields(t *testing.T) {
	client := llm.NewMockClient("analysis").On("flat JSON structure", fullReport)

	got, err := newCorrelator(client).Correlate(context.Background(), "alice", Inputs{
		Profile: "Login: alice",
		Commits: "Fixed the scheduler deadlock.",
	}, 3)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}

	want := "Fixed the scheduler. Matches the roadmap. Paired with reviewers. High."
	if got != want {
		t.Errorf("Correlate() = %q, want %q", got, want)
	}
}

func TestCorrelate_AllInputsAbsent(t *testing.T) {
	client := llm.NewMockClient(fullReport)

	_, err := newCorrelator(client).Correlate(context.Background(), "alice", Inputs{Commits: "  "}, 0)
	if !errors.Is(err, ErrNoReport) {
		t.Fatalf("Correlate() error = %v, want ErrNoReport", err)
	}
	if n := len(client.Requests()); n != 0 {
		t.Errorf("backend called %d times, want 0", n)
	}
}

func TestCorrelate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		client *llm.MockClient
		cause  error
	}{
		{
			name:   "first turn fails",
			client: &llm.MockClient{Err: llm.ErrBackend},
			cause:  llm.ErrBackend,
		},
		{
			name:   "second turn empty",
			client: llm.NewMockClient("analysis").On("flat JSON structure", ""),
			cause:  llm.ErrEmptyReply,
		},
		{
			name:   "incomplete report",
			client: llm.NewMockClient("analysis").On("flat JSON structure", `{"impactful": "x", "alignment": "y"`),
			cause:  summary.ErrIncompleteReport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newCorrelator(tt.client).Correlate(context.Background(), "alice", Inputs{Issues: "Opened #1."}, 1)
			if !errors.Is(err, ErrNoReport) {
				t.Errorf("error = %v, want ErrNoReport", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("error = %v, want cause %v", err, tt.cause)
			}
			if got != "" {
				t.Errorf("partial text returned: %q", got)
			}
		})
	}
}

func TestCorrelate_BudgetsInputs(t *testing.T) {
	client := llm.NewMockClient("analysis").On("flat JSON structure", fullReport)

	long := strings.Repeat("commit ", 5000)
	_, err := newCorrelator(client).Correlate(context.Background(), "alice", Inputs{
		Profile: "Login: alice",
		Commits: long,
		Issues:  long,
	}, 100)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}

	reqs := client.Requests()
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}

	// profile 1 + commits 4 + issues 4 share 5500 tokens.
	perLarge := Capacity * 4 / 9
	prompt := reqs[0].Messages[1].Content
	if n := strings.Count(prompt, "commit "); n > 2*perLarge {
		t.Errorf("prompt kept %d words, want at most %d", n, 2*perLarge)
	}
	if reqs[0].MaxTokens != 768 || reqs[1].MaxTokens != 384 {
		t.Errorf("MaxTokens = %d/%d, want 768/384", reqs[0].MaxTokens, reqs[1].MaxTokens)
	}
}

func TestCorrelate_TokenBudgetPerSection(t *testing.T) {
	client := llm.NewMockClient("analysis").On("flat JSON structure", fullReport)

	in := Inputs{
		Profile: "Login: alice",
		Commits: strings.TrimSpace(strings.Repeat("x ", 10000)),
		Issues:  strings.TrimSpace(strings.Repeat("y ", 10000)),
	}
	if _, err := newCorrelator(client).Correlate(context.Background(), "alice", in, 5); err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}

	plan := budget.Allocate(Capacity, []budget.Source{
		{Name: "profile", Weight: 1, Present: true},
		{Name: "commits", Weight: 4, Present: true},
		{Name: "issues", Weight: 4, Present: true},
		{Name: "discussions", Weight: 2},
	})

	lines := strings.Split(client.Requests()[0].Messages[1].Content, "\n")
	for _, tt := range []struct {
		prefix string
		source int
	}{
		{"x", 1},
		{"y", 2},
	} {
		var section string
		for _, line := range lines {
			if strings.HasPrefix(line, tt.prefix+" ") {
				section = line
			}
		}
		if section == "" {
			t.Fatalf("no %q section in prompt", tt.prefix)
		}

		limit, _ := plan.Tokens(tt.source)
		n, err := budget.CountTokens(section)
		if err != nil {
			t.Fatalf("CountTokens() error = %v", err)
		}
		if n > limit {
			t.Errorf("%q section = %d tokens, want at most %d", tt.prefix, n, limit)
		}
		if len(section) >= plan.Chars(tt.source) {
			t.Errorf("%q section hit the character cap (%d chars), want the token cap to bind", tt.prefix, len(section))
		}
	}
}

func TestCorrelate_SkipsNullFacet(t *testing.T) {
	reply := `{"impactful":"Fixed the cache.","alignment":"Matches goals.","patterns":"Steady fixes.","synergy":null,"significance":"Unblocked release."}`
	client := llm.NewMockClient("analysis").On("flat JSON structure", reply)

	got, err := newCorrelator(client).Correlate(context.Background(), "alice", Inputs{Commits: "Fixed the cache."}, 1)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	want := "Fixed the cache. Matches goals. Steady fixes. Unblocked release."
	if got != want {
		t.Errorf("Correlate() = %q, want %q", got, want)
	}
}

func TestOutputCaps(t *testing.T) {
	tests := []struct {
		hint         int
		want1, want2 int
	}{
		{0, 384, 192},
		{10, 384, 192},
		{11, 512, 256},
		{50, 512, 256},
		{51, 768, 384},
	}

	for _, tt := range tests {
		got1, got2 := outputCaps(tt.hint)
		if got1 != tt.want1 || got2 != tt.want2 {
			t.Errorf("outputCaps(%d) = (%d, %d), want (%d, %d)", tt.hint, got1, got2, tt.want1, tt.want2)
		}
	}
}
