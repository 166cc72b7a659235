// Package ledger collects per-contributor observations for one report run.
package ledger

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptyName is returned when an observation has no contributor name.
var ErrEmptyName = errors.New("observation has empty contributor name")

// Observation is one (contributor, link, summary) triple produced by
// summarizing a single issue, commit or discussion.
type Observation struct {
	Name    string
	Link    string
	Summary string
}

// Entry holds the two parallel logs for one contributor. Links[i] is the
// source for Summaries[i].
type Entry struct {
	Links     []string
	Summaries []string
}

// LinkLog returns the links joined by newlines.
func (e *Entry) LinkLog() string {
	return strings.Join(e.Links, "\n")
}

// SummaryLog returns the summaries joined by newlines.
func (e *Entry) SummaryLog() string {
	return strings.Join(e.Summaries, "\n")
}

// Count returns the number of observations folded into the entry.
func (e *Entry) Count() int {
	return len(e.Links)
}

// Ledger maps contributor names to their entries. Entries are never removed.
// A Ledger is not safe for concurrent use; callers fold from a single
// goroutine.
type Ledger struct {
	order   []string
	entries map[string]*Entry
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]*Entry)}
}

// Fold appends an observation. The first sighting of a name creates its
// entry; later sightings append to both logs. Newlines inside the link or
// summary are flattened so each observation stays one line in each log.
func (l *Ledger) Fold(obs Observation) error {
	name := strings.TrimSpace(obs.Name)
	if name == "" {
		return ErrEmptyName
	}

	e, ok := l.entries[name]
	if !ok {
		e = &Entry{}
		l.entries[name] = e
		l.order = append(l.order, name)
	}
	e.Links = append(e.Links, flatten(obs.Link))
	e.Summaries = append(e.Summaries, flatten(obs.Summary))
	return nil
}

// Get returns the entry for name.
func (l *Ledger) Get(name string) (*Entry, bool) {
	e, ok := l.entries[name]
	return e, ok
}

// Names returns contributor names in first-sighting order.
func (l *Ledger) Names() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Len returns the number of contributors in the ledger.
func (l *Ledger) Len() int {
	return len(l.order)
}

// ByCount returns names ordered by observation count, most first. Ties keep
// first-sighting order.
func (l *Ledger) ByCount() []string {
	names := l.Names()
	sort.SliceStable(names, func(i, j int) bool {
		return l.entries[names[i]].Count() > l.entries[names[j]].Count()
	})
	return names
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(strings.ReplaceAll(s, "\r", " "))
}
