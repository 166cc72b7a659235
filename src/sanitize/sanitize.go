// Package sanitize cleans GitHub issue, comment and discussion bodies before
// they are budgeted into prompts.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// ANSI escape codes: \x1b[...m (SGR sequences), common in pasted CI logs
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

	// HTML comments left over from issue and pull request templates
	htmlCommentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)

	// Markdown images: ![alt](url)
	imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)

	// Three or more newlines
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

// StripANSI removes ANSI escape codes.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// Text removes template comments, ANSI codes and image markup from a
// GitHub body. Images keep their alt text as "[image: alt]".
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = htmlCommentPattern.ReplaceAllString(s, "")
	s = StripANSI(s)
	s = imagePattern.ReplaceAllStringFunc(s, func(m string) string {
		alt := strings.TrimSpace(imagePattern.FindStringSubmatch(m)[1])
		if alt == "" {
			return "[image]"
		}
		return "[image: " + alt + "]"
	})
	s = blankLinesPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
