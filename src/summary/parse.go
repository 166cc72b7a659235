// Package summary decodes the flat JSON summaries returned by the chat
// backend. Replies are nominally JSON but may carry markdown fences, stray
// prose or trailing commas, so every parser has a pattern-matching fallback.
package summary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	// ErrNoFields means neither strict decoding nor pattern matching found a
	// single key/value pair.
	ErrNoFields = errors.New("no fields could be extracted from reply")
)

// Pair is one contributor name and the sentence summarizing their part.
type Pair struct {
	Key   string
	Value string
}

var pairPattern = regexp.MustCompile(`"([^"]+)":\s*"([^"]*)"`)

// ParseContributors decodes a single-level JSON object of name -> summary.
// String values become pairs in document order; other values are skipped, as
// are blank keys. If the reply is not a JSON object, every "key": "value"
// occurrence in the raw text is collected instead.
func ParseContributors(raw string) ([]Pair, error) {
	pairs, err := decodeFlat(raw)
	if err == nil {
		return pairs, nil
	}

	var recovered []Pair
	for _, m := range pairPattern.FindAllStringSubmatch(raw, -1) {
		if strings.TrimSpace(m[1]) == "" {
			continue
		}
		recovered = append(recovered, Pair{Key: m[1], Value: m[2]})
	}
	if len(recovered) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoFields, err)
	}
	return recovered, nil
}

// decodeFlat walks the object token by token so key order survives.
func decodeFlat(raw string) ([]Pair, error) {
	dec := json.NewDecoder(strings.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	// A repeated key keeps the position of its first occurrence and the
	// value of its last, as an object decode would.
	var pairs []Pair
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}

		s, isString := stringValue(value)
		p := Pair{}
		if isString && strings.TrimSpace(key) != "" {
			p = Pair{Key: key, Value: s}
		}
		if i, seen := index[key]; seen {
			pairs[i] = p
			continue
		}
		index[key] = len(pairs)
		pairs = append(pairs, p)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	kept := pairs[:0]
	for _, p := range pairs {
		if p.Key != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	return kept, nil
}

func stringValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// compact strips insignificant whitespace so schema validation sees the
// reply the way encoding/json would.
func compact(raw string) ([]byte, bool) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(strings.TrimSpace(raw))); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
