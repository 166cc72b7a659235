// Package aggregate summarizes issues, commits and discussions concurrently
// and folds the per-contributor results into a ledger.
package aggregate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"devpulse-agent/src/budget"
	"devpulse-agent/src/ledger"
	"devpulse-agent/src/llm"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/provider"
	"devpulse-agent/src/summary"
)

// ErrNoEntries is returned when aggregation produced an empty ledger.
var ErrNoEntries = errors.New("no entries processed")

// Options narrows prompt phrasing. They never filter which items are
// processed.
type Options struct {
	// Target is the contributor the report is about, if any.
	Target string
	// Contributors is the set of known repository contributors.
	Contributors map[string]bool
	// Token is passed through to the forge for secondary fetches.
	Token string
}

// Aggregator runs one fetch-and-summarize pipeline per item.
type Aggregator struct {
	forge    provider.Forge
	composer *llm.Composer
	logger   logger.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(f provider.Forge, c *llm.Composer, log logger.Logger) *Aggregator {
	return &Aggregator{forge: f, composer: c, logger: log}
}

// Aggregate summarizes every item and returns a new ledger. Failed items are
// logged and dropped; the call fails only when nothing was folded.
func (a *Aggregator) Aggregate(ctx context.Context, items []provider.Item, opts Options) (*ledger.Ledger, error) {
	l := ledger.New()
	a.fold(ctx, items, l, opts)
	if l.Len() == 0 {
		return nil, ErrNoEntries
	}
	return l, nil
}

// FoldCommits summarizes commits into an existing ledger and returns the
// number of observations added.
func (a *Aggregator) FoldCommits(ctx context.Context, items []provider.Item, l *ledger.Ledger, opts Options) int {
	return a.fold(ctx, items, l, opts)
}

// fold dispatches all items at once, waits for every one to settle, then
// folds the results in the order they completed. Only this goroutine touches
// the ledger.
func (a *Aggregator) fold(ctx context.Context, items []provider.Item, l *ledger.Ledger, opts Options) int {
	results := make(chan []ledger.Observation, len(items))

	var g errgroup.Group
	for _, item := range items {
		g.Go(func() error {
			obs, err := a.analyze(ctx, item, opts)
			if err != nil {
				a.logger.Error("[Aggregator] Dropping %s %s: %v", item.Kind, itemRef(item), err)
				return nil
			}
			results <- obs
			return nil
		})
	}
	g.Wait()
	close(results)

	folded := 0
	for obs := range results {
		for _, o := range obs {
			if err := l.Fold(o); err != nil {
				a.logger.Debug("[Aggregator] Skipping observation from %s: %v", o.Link, err)
				continue
			}
			folded++
		}
	}

	a.logger.Debug("[Aggregator] Folded %d observations from %d items", folded, len(items))
	return folded
}

func (a *Aggregator) analyze(ctx context.Context, item provider.Item, opts Options) ([]ledger.Observation, error) {
	var (
		prompt llm.ChainPrompt
		tag    string
	)

	switch item.Kind {
	case provider.KindIssue:
		var comments []provider.Comment
		if item.CommentsURL != "" {
			var err error
			comments, err = a.forge.Comments(ctx, item.CommentsURL, opts.Token)
			if err != nil {
				return nil, err
			}
		}
		text := threadText("an issue", item, comments)
		prompt = issuePrompt(item, text, focus(opts.Target, comments, opts.Contributors))
		tag = issueTag

	case provider.KindCommit:
		patch, err := a.forge.Patch(ctx, item.HTMLURL, opts.Token)
		if err != nil {
			return nil, err
		}
		prompt = commitPrompt(item, budget.TruncateChars(patch, maxPatchChars))
		tag = commitTag

	case provider.KindDiscussion:
		text := threadText("a discussion", item, item.Comments)
		prompt = discussionPrompt(item, text, focus(opts.Target, item.Comments, opts.Contributors))
		tag = discussionTag

	default:
		return nil, fmt.Errorf("unsupported item kind %q", item.Kind)
	}

	reply, err := a.composer.Chain(ctx, prompt, fmt.Sprintf("%s %s", tag, itemRef(item)))
	if err != nil {
		return nil, err
	}

	pairs, err := summary.ParseContributors(reply)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, summary.ErrNoFields
	}

	obs := make([]ledger.Observation, 0, len(pairs))
	for _, p := range pairs {
		obs = append(obs, ledger.Observation{Name: p.Key, Link: item.HTMLURL, Summary: p.Value})
	}
	return obs, nil
}

func itemRef(item provider.Item) string {
	switch {
	case item.SHA != "":
		return item.SHA
	case item.Number != 0:
		return fmt.Sprintf("#%d", item.Number)
	}
	return item.HTMLURL
}
