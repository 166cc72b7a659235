// Package budget trims free text to a fixed size and splits a shared capacity
// across several optional prompt sources.
package budget

import (
	"math"
	"strings"
	"unicode/utf8"
)

// MaxWordRunes is the longest word kept by Squeeze. Longer tokens are usually
// hashes, base64 blobs or URLs and carry little meaning for a summary.
const MaxWordRunes = 150

// Squeeze compacts text to at most maxLen whitespace-delimited words.
//
// Text already within budget is returned unchanged. Otherwise fenced blocks
// (lines containing ``` or """) are removed along with everything between
// them, words longer than MaxWordRunes are dropped, and if the result is still
// over budget the middle is cut out: the first ceil(maxLen*split) words and
// the last maxLen-ceil(maxLen*split) words are kept.
func Squeeze(text string, maxLen int, split float64) string {
	if maxLen <= 0 {
		return ""
	}
	if len(strings.Fields(text)) <= maxLen {
		return text
	}

	body := stripQuoted(text)
	words := strings.Fields(body)
	if len(words) <= maxLen {
		return body
	}

	head, tail := headTail(maxLen, split)
	kept := make([]string, 0, maxLen)
	kept = append(kept, words[:head]...)
	kept = append(kept, words[len(words)-tail:]...)
	return strings.Join(kept, " ")
}

// stripQuoted drops fenced blocks and oversized words, line by line.
func stripQuoted(text string) string {
	var b strings.Builder
	insideQuote := false

	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "```") || strings.Contains(line, `"""`) {
			insideQuote = !insideQuote
			continue
		}
		if insideQuote {
			continue
		}

		fields := strings.Fields(line)
		kept := fields[:0]
		for _, w := range fields {
			if utf8.RuneCountInString(w) <= MaxWordRunes {
				kept = append(kept, w)
			}
		}
		b.WriteString(strings.Join(kept, " "))
		b.WriteByte('\n')
	}

	return b.String()
}

// headTail splits a budget into a head and tail share. split is clamped to
// [0,1] so the two shares always sum to budget.
func headTail(budget int, split float64) (int, int) {
	if math.IsNaN(split) || split < 0 {
		split = 0
	}
	if split > 1 {
		split = 1
	}
	head := int(math.Ceil(float64(budget) * split))
	if head > budget {
		head = budget
	}
	return head, budget - head
}

// TruncateChars returns the first n runes of text.
func TruncateChars(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
