package summary

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseContributors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Pair
	}{
		{
			name: "well formed",
			raw:  `{"a":"x","b":"y"}`,
			want: []Pair{{"a", "x"}, {"b", "y"}},
		},
		{
			name: "keeps document order",
			raw:  `{"zed": "last name first", "amy": "second"}`,
			want: []Pair{{"zed", "last name first"}, {"amy", "second"}},
		},
		{
			name: "skips non-string values",
			raw:  `{"a":"x","n":3,"o":{"k":"v"},"l":["q"],"z":null,"b":"y"}`,
			want: []Pair{{"a", "x"}, {"b", "y"}},
		},
		{
			name: "skips blank keys",
			raw:  `{"":"nobody","  ":"spaces","a":"x"}`,
			want: []Pair{{"a", "x"}},
		},
		{
			name: "fallback on surrounding prose",
			raw:  `foo "a": "x" bar "b": "y" baz`,
			want: []Pair{{"a", "x"}, {"b", "y"}},
		},
		{
			name: "fallback on markdown fence",
			raw:  "```json\n{\n  \"alice\": \"Fixed the build.\",\n}\n```",
			want: []Pair{{"alice", "Fixed the build."}},
		},
		{
			name: "duplicate key keeps last value",
			raw:  `{"a":"x","b":"y","a":"z"}`,
			want: []Pair{{"a", "z"}, {"b", "y"}},
		},
		{
			name: "duplicate key with non-string last value",
			raw:  `{"a":"x","b":"y","a":null}`,
			want: []Pair{{"b", "y"}},
		},
		{
			name: "escaped quotes survive strict path",
			raw:  `{"bob":"said \"hi\""}`,
			want: []Pair{{"bob", `said "hi"`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContributors(tt.raw)
			if err != nil {
				t.Fatalf("ParseContributors() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseContributors() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseContributors_Garbage(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{", `["a","b"]`, `{"a": 1`} {
		got, err := ParseContributors(raw)
		if !errors.Is(err, ErrNoFields) {
			t.Errorf("ParseContributors(%q) error = %v, want ErrNoFields", raw, err)
		}
		if got != nil {
			t.Errorf("ParseContributors(%q) = %v, want nil", raw, got)
		}
	}
}

func TestParseReport(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "all five",
			raw:  `{"impactful":"A.","alignment":"B.","patterns":"C.","synergy":"D.","significance":"E."}`,
			want: "A. B. C. D. E.",
		},
		{
			name: "key order fixed regardless of input order",
			raw:  `{"significance":"E.","impactful":"A.","synergy":"D.","patterns":"C.","alignment":"B."}`,
			want: "A. B. C. D. E.",
		},
		{
			name: "absent and empty fields skipped",
			raw:  `{"impactful":"A.","patterns":"","extra":"ignored"}`,
			want: "A.",
		},
		{
			name: "null facet skipped",
			raw:  `{"impactful":"Fixed the cache.","alignment":"Matches goals.","patterns":"Steady fixes.","synergy":null,"significance":"Unblocked release."}`,
			want: "Fixed the cache. Matches goals. Steady fixes. Unblocked release.",
		},
		{
			name: "numeric facet skipped",
			raw:  `{"impactful":5,"alignment":"B.","patterns":"C.","synergy":"D.","significance":"E."}`,
			want: "B. C. D. E.",
		},
		{
			name: "fallback with fence",
			raw: "```json\n{\"impactful\": \"A.\", \"alignment\": \"B.\", \"patterns\": \"C.\", " +
				"\"synergy\": \"D.\", \"significance\": \"E.\",}\n```",
			want: "A. B. C. D. E.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReport(tt.raw)
			if err != nil {
				t.Fatalf("ParseReport() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseReport() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseReport_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"garbage", "the model rambled", ErrIncompleteReport},
		{"four of five recovered", `x "impactful": "A", "alignment": "B", "patterns": "C", "synergy": "D" y`, ErrIncompleteReport},
		{"only non-string facets", `{"impactful": 5, "synergy": null}`, ErrEmptyReport},
		{"empty object", `{}`, ErrEmptyReport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReport(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseReport() error = %v, want %v", err, tt.want)
			}
			if got != "" {
				t.Errorf("ParseReport() = %q, want empty", got)
			}
		})
	}
}
