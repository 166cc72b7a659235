package mcp

import (
	"regexp"
	"strings"
)

// maxHeadline caps the section headline in runes.
const maxHeadline = 160

// maxManifestSources caps the shortened sources listed per section.
const maxManifestSources = 5

// whitespacePattern matches multiple consecutive whitespace characters.
var whitespacePattern = regexp.MustCompile(`\s+`)

// normalizeWhitespace collapses multiple spaces/tabs and trims.
func normalizeWhitespace(line string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(line, " "))
}

// sentenceEnd matches the end of the first sentence.
var sentenceEnd = regexp.MustCompile(`[.!?](\s|$)`)

// headline returns the first sentence of text, capped at maxHeadline runes.
func headline(text string) string {
	text = normalizeWhitespace(text)
	if loc := sentenceEnd.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[:loc[1]])
	}

	runes := []rune(text)
	if len(runes) > maxHeadline {
		return string(runes[:maxHeadline-3]) + "..."
	}
	return text
}

// githubLinkPattern captures the path after github.com/owner/repo/.
var githubLinkPattern = regexp.MustCompile(`^https?://github\.com/[^/]+/[^/]+/(issues|pull|commit|discussions)/([^/?#]+)`)

// shortLink reduces a GitHub link to "#N" for issues, pull requests and
// discussions and to a 7-character SHA for commits. Other links are kept.
func shortLink(link string) string {
	m := githubLinkPattern.FindStringSubmatch(link)
	if m == nil {
		return link
	}
	if m[1] == "commit" {
		sha := m[2]
		if len(sha) > 7 {
			sha = sha[:7]
		}
		return sha
	}
	return "#" + m[2]
}

// compressLinks shortens and deduplicates links, keeping at most limit.
func compressLinks(links []string, limit int) []string {
	seen := make(map[string]bool, len(links))
	var out []string
	for _, link := range links {
		s := shortLink(link)
		if seen[s] {
			continue
		}
		seen[s] = true
		if len(out) < limit {
			out = append(out, s)
		}
	}
	return out
}
