package budget

// CharsPerToken converts a token budget into a character truncation length.
const CharsPerToken = 3

// Source is one optional input competing for a shared capacity.
type Source struct {
	Name    string
	Weight  int
	Present bool
}

// Plan maps a source index to its token budget. Absent sources have no entry.
type Plan map[int]int

// Tokens returns the token budget for source i and whether it has one.
func (p Plan) Tokens(i int) (int, bool) {
	n, ok := p[i]
	return n, ok
}

// Chars returns the character budget for source i, or 0 if it has none.
func (p Plan) Chars(i int) int {
	return p[i] * CharsPerToken
}

// Total returns the sum of all token budgets in the plan.
func (p Plan) Total() int {
	total := 0
	for _, n := range p {
		total += n
	}
	return total
}

// Allocate splits capacity across the present sources in proportion to their
// weights. Weights of absent sources are ignored. With no present, positively
// weighted source the plan is empty.
func Allocate(capacity int, sources []Source) Plan {
	plan := make(Plan)
	if capacity <= 0 {
		return plan
	}

	active := 0
	for _, s := range sources {
		if s.Present && s.Weight > 0 {
			active += s.Weight
		}
	}
	if active == 0 {
		return plan
	}

	for i, s := range sources {
		if !s.Present || s.Weight <= 0 {
			continue
		}
		plan[i] = capacity * s.Weight / active
	}
	return plan
}
