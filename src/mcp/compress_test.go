package mcp

import (
	"reflect"
	"strings"
	"testing"
)

func TestHeadline(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "first sentence",
			input:    "Fixed the scheduler. Matches the roadmap.",
			expected: "Fixed the scheduler.",
		},
		{
			name:     "whitespace collapsed",
			input:    "  Reviewed\n\tthree   pull requests!  Then left.",
			expected: "Reviewed three pull requests!",
		},
		{
			name:     "version numbers kept",
			input:    "Released v1.2.3 to users. Next.",
			expected: "Released v1.2.3 to users.",
		},
		{
			name:     "no terminator",
			input:    "Opened an issue",
			expected: "Opened an issue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := headline(tt.input)
			if result != tt.expected {
				t.Errorf("headline(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestHeadline_Capped(t *testing.T) {
	result := headline(strings.Repeat("word ", 100))
	if n := len([]rune(result)); n != maxHeadline {
		t.Errorf("headline length = %d, want %d", n, maxHeadline)
	}
	if !strings.HasSuffix(result, "...") {
		t.Errorf("headline = %q, want ellipsis", result)
	}
}

func TestShortLink(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "issue",
			input:    "https://github.com/acme/widgets/issues/12",
			expected: "#12",
		},
		{
			name:     "pull request",
			input:    "https://github.com/acme/widgets/pull/7#discussion_r1",
			expected: "#7",
		},
		{
			name:     "commit",
			input:    "https://github.com/acme/widgets/commit/1a2b3c4d5e6f7890abcdef1234567890abcdef12",
			expected: "1a2b3c4",
		},
		{
			name:     "discussion",
			input:    "https://github.com/acme/widgets/discussions/3",
			expected: "#3",
		},
		{
			name:     "other host preserved",
			input:    "https://example.com/acme/widgets/issues/1",
			expected: "https://example.com/acme/widgets/issues/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shortLink(tt.input)
			if result != tt.expected {
				t.Errorf("shortLink(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCompressLinks(t *testing.T) {
	links := []string{
		"https://github.com/acme/widgets/issues/1",
		"https://github.com/acme/widgets/issues/1",
		"https://github.com/acme/widgets/issues/2",
		"https://github.com/acme/widgets/issues/3",
	}

	got := compressLinks(links, 2)
	want := []string{"#1", "#2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("compressLinks() = %v, want %v", got, want)
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	if got := normalizeWhitespace("  a \t b\n\nc  "); got != "a b c" {
		t.Errorf("normalizeWhitespace() = %q", got)
	}
}
