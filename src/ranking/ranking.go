// Package ranking orders contributors by the activity folded into the
// weekly ledgers.
package ranking

import (
	"sort"

	"devpulse-agent/src/ledger"
)

// Tier constants for contributor classification.
const (
	TierCode        = 1 // Authored commits in the window
	TierParticipant = 3 // Only issues or discussions
)

// Ledgers groups the per-source ledgers of one report run. Any may be nil.
type Ledgers struct {
	Commits     *ledger.Ledger
	Issues      *ledger.Ledger
	Discussions *ledger.Ledger
}

// RankedContributor carries a contributor's observation counts and position.
type RankedContributor struct {
	Name        string
	Commits     int
	Issues      int
	Discussions int
	Tier        int // TierCode (1) or TierParticipant (3)
	Rank        int // Position within the flattened list (1-indexed)
}

// Total returns the number of observations across all sources.
func (r RankedContributor) Total() int {
	return r.Commits + r.Issues + r.Discussions
}

// TieredContributors groups contributors by tier, each tier sorted by
// activity.
type TieredContributors struct {
	Code         []RankedContributor
	Participants []RankedContributor
}

// RankContributors merges the ledgers by name and classifies each
// contributor. Each tier is sorted by total observations (descending), then
// commit count (descending), then name.
func RankContributors(l Ledgers) TieredContributors {
	counts := make(map[string]*RankedContributor)
	var order []string

	visit := func(src *ledger.Ledger, add func(*RankedContributor, int)) {
		if src == nil {
			return
		}
		for _, name := range src.Names() {
			e, _ := src.Get(name)
			rc, ok := counts[name]
			if !ok {
				rc = &RankedContributor{Name: name}
				counts[name] = rc
				order = append(order, name)
			}
			add(rc, e.Count())
		}
	}
	visit(l.Commits, func(rc *RankedContributor, n int) { rc.Commits += n })
	visit(l.Issues, func(rc *RankedContributor, n int) { rc.Issues += n })
	visit(l.Discussions, func(rc *RankedContributor, n int) { rc.Discussions += n })

	if len(order) == 0 {
		return TieredContributors{}
	}

	sorted := make([]RankedContributor, 0, len(order))
	for _, name := range order {
		sorted = append(sorted, *counts[name])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total() != sorted[j].Total() {
			return sorted[i].Total() > sorted[j].Total()
		}
		if sorted[i].Commits != sorted[j].Commits {
			return sorted[i].Commits > sorted[j].Commits
		}
		return sorted[i].Name < sorted[j].Name
	})

	var tc TieredContributors
	for _, rc := range sorted {
		rc.Tier = ClassifyTier(rc)
		switch rc.Tier {
		case TierCode:
			tc.Code = append(tc.Code, rc)
		case TierParticipant:
			tc.Participants = append(tc.Participants, rc)
		}
	}
	return tc
}

// FlattenByTier returns all contributors sorted by tier (code first, then
// participants), preserving activity order within each tier. Assigns global
// rank (1-indexed).
func (tc TieredContributors) FlattenByTier() []RankedContributor {
	total := len(tc.Code) + len(tc.Participants)
	if total == 0 {
		return nil
	}

	result := make([]RankedContributor, 0, total)
	result = append(result, tc.Code...)
	result = append(result, tc.Participants...)

	for i := range result {
		result[i].Rank = i + 1
	}
	return result
}

// Counts returns the number of code contributors and participants.
func (tc TieredContributors) Counts() (code, participants int) {
	return len(tc.Code), len(tc.Participants)
}

// Top returns the names of the first n contributors of the flattened list.
func (tc TieredContributors) Top(n int) []string {
	if n <= 0 {
		return nil
	}
	flat := tc.FlattenByTier()
	if len(flat) > n {
		flat = flat[:n]
	}
	names := make([]string, len(flat))
	for i, rc := range flat {
		names[i] = rc.Name
	}
	return names
}

// ClassifyTier determines which tier a contributor belongs to.
func ClassifyTier(rc RankedContributor) int {
	if rc.Commits > 0 {
		return TierCode
	}
	return TierParticipant
}
