package sanitize

import "testing"

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "color codes",
			input:    "\x1b[31mERROR\x1b[0m: something failed",
			expected: "ERROR: something failed",
		},
		{
			name:     "no ANSI",
			input:    "plain text message",
			expected: "plain text message",
		},
		{
			name:     "multiple codes",
			input:    "\x1b[1m\x1b[31mbold red\x1b[0m normal",
			expected: "bold red normal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripANSI(tt.input)
			if result != tt.expected {
				t.Errorf("StripANSI(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "template comments",
			input:    "<!-- Describe the bug -->\nIt crashes.\n<!--\nSteps:\n-->",
			expected: "It crashes.",
		},
		{
			name:     "images keep alt text",
			input:    "See ![stack trace](https://example.com/a.png) and ![](https://example.com/b.png)",
			expected: "See [image: stack trace] and [image]",
		},
		{
			name:     "pasted log",
			input:    "Log:\r\n\x1b[31mpanic: nil map\x1b[0m",
			expected: "Log:\npanic: nil map",
		},
		{
			name:     "blank lines collapsed",
			input:    "first\n\n\n\n\nsecond",
			expected: "first\n\nsecond",
		},
		{
			name:     "plain text untouched",
			input:    "Fixed in abc.",
			expected: "Fixed in abc.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Text(tt.input)
			if result != tt.expected {
				t.Errorf("Text(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
