// Package report builds the weekly activity report for a repository or a
// single contributor.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"devpulse-agent/src/aggregate"
	"devpulse-agent/src/budget"
	"devpulse-agent/src/contracts"
	"devpulse-agent/src/correlate"
	"devpulse-agent/src/ledger"
	"devpulse-agent/src/llm"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/provider"
	"devpulse-agent/src/ranking"
)

const (
	// DefaultDays is the report window when none is configured.
	DefaultDays = 7
	// MaxTargets caps how many contributors a repository report covers.
	MaxTargets = 3

	readmeSqueezeAbove = 48_000
	readmeWords        = 9_000
	maxReadmeChars     = 20_000
	readmeSummaryCap   = 256
)

// ErrNoActivity is returned when the window produced nothing to report.
var ErrNoActivity = errors.New("no activity to report")

// Overview describes the repository being reported on.
type Overview struct {
	Owner        string
	Repo         string
	Summary      string
	Contributors []string
}

// Section is the assessment of one contributor.
type Section struct {
	Contributor string
	Text        string
	Links       []string
}

// Report is a finished weekly report.
type Report struct {
	Owner    string
	Repo     string
	User     string
	Days     int
	Overview *Overview
	Sections []Section
}

// Reporter runs the fetch, aggregate and correlate stages.
type Reporter struct {
	forge      provider.Forge
	composer   *llm.Composer
	aggregator *aggregate.Aggregator
	correlator *correlate.Correlator
	logger     logger.Logger
	days       int
}

// NewReporter creates a reporter with a window of days (DefaultDays if not
// positive).
func NewReporter(f provider.Forge, c *llm.Composer, log logger.Logger, days int) *Reporter {
	if days <= 0 {
		days = DefaultDays
	}
	return &Reporter{
		forge:      f,
		composer:   c,
		aggregator: aggregate.NewAggregator(f, c, log),
		correlator: correlate.NewCorrelator(c, log),
		logger:     log,
		days:       days,
	}
}

// Days returns the report window.
func (r *Reporter) Days() int {
	return r.days
}

// WithDays returns a copy of the reporter using a different window. A
// non-positive value keeps the current one.
func (r *Reporter) WithDays(days int) *Reporter {
	c := *r
	if days > 0 {
		c.days = days
	}
	return &c
}

// Handle serves a queued report request with the default credential.
func (r *Reporter) Handle(ctx context.Context, req contracts.ReportRequest) (*Report, error) {
	return r.WithDays(req.Days).Weekly(ctx, req.Owner, req.Repo, req.User, "")
}

// Overview validates the repository and summarizes what it is about. A
// repository without a community profile is invalid.
func (r *Reporter) Overview(ctx context.Context, owner, repo string) (*Overview, error) {
	profile, err := r.forge.CommunityProfile(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", provider.ErrInvalidRepo, owner, repo, err)
	}

	ov := &Overview{Owner: owner, Repo: repo}

	if profile.HasReadme {
		readme, err := r.forge.Readme(ctx, owner, repo)
		switch {
		case errors.Is(err, provider.ErrNoContent):
			r.logger.Debug("[Reporter] %s/%s has an empty README", owner, repo)
		case err != nil:
			r.logger.Error("[Reporter] Failed to fetch README for %s/%s: %v", owner, repo, err)
		default:
			summary, err := r.summarizeReadme(ctx, readme)
			if err != nil {
				r.logger.Error("[Reporter] Failed to summarize README for %s/%s: %v", owner, repo, err)
			}
			ov.Summary = summary
		}
	}
	if ov.Summary == "" {
		ov.Summary = profile.Description
	}

	contributors, err := r.forge.Contributors(ctx, owner, repo)
	if err != nil {
		r.logger.Error("[Reporter] Failed to list contributors for %s/%s: %v", owner, repo, err)
	}
	ov.Contributors = contributors

	return ov, nil
}

func (r *Reporter) summarizeReadme(ctx context.Context, readme string) (string, error) {
	if len(readme) > readmeSqueezeAbove {
		readme = budget.Squeeze(readme, readmeWords, 0.7)
	}
	readme = budget.TruncateChars(readme, maxReadmeChars)

	return r.composer.Ask(ctx, llm.Prompt{
		System: "Your task is to objectively analyze a GitHub profile and the README of their project. " +
			"Focus on extracting factual information about the features of the project, and its stated objectives. " +
			"Avoid making judgments or inferring subjective value.",
		User: fmt.Sprintf("Based on the profile and README provided: %s, extract a concise summary detailing this project's factual significance in its domain, "+
			"their areas of expertise, and the main features and goals of the project. Ensure the insights are objective and under 110 tokens.", readme),
		MaxTokens: readmeSummaryCap,
	}, "readme")
}

// activity is everything fetched for one window.
type activity struct {
	issues      []provider.Item
	commits     []provider.Item
	discussions []provider.Item
}

func (a activity) len() int {
	return len(a.issues) + len(a.commits) + len(a.discussions)
}

// Weekly builds the report for owner/repo, limited to user when non-empty.
// token, when set, replaces the default GitHub credential for this run.
func (r *Reporter) Weekly(ctx context.Context, owner, repo, user, token string) (*Report, error) {
	ov, err := r.Overview(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	act := r.fetch(ctx, owner, repo, user, token)
	r.logger.Info("[Reporter] %s/%s: %d issues, %d commits, %d discussions in the last %d days",
		owner, repo, len(act.issues), len(act.commits), len(act.discussions), r.days)
	if act.len() == 0 {
		return nil, fmt.Errorf("%w: %s/%s in the last %d days", ErrNoActivity, owner, repo, r.days)
	}

	known := make(map[string]bool, len(ov.Contributors))
	for _, c := range ov.Contributors {
		known[c] = true
	}
	opts := aggregate.Options{Target: user, Contributors: known, Token: token}
	ledgers := r.aggregate(ctx, act, opts)

	targets := []string{user}
	if user == "" {
		targets = ranking.RankContributors(ledgers).Top(MaxTargets)
	}

	rep := &Report{Owner: owner, Repo: repo, User: user, Days: r.days, Overview: ov}
	for _, target := range targets {
		section, err := r.section(ctx, target, ledgers)
		if err != nil {
			r.logger.Error("[Reporter] Skipping %s: %v", target, err)
			continue
		}
		rep.Sections = append(rep.Sections, section)
	}

	if len(rep.Sections) == 0 {
		return nil, fmt.Errorf("%w: nothing could be summarized for %s/%s", ErrNoActivity, owner, repo)
	}
	return rep, nil
}

// fetch loads the three activity sources concurrently. A failed source is
// logged and treated as empty.
func (r *Reporter) fetch(ctx context.Context, owner, repo, user, token string) activity {
	var (
		act activity
		g   errgroup.Group
	)

	load := func(kind string, fn func(context.Context, string, string, string, int, string) (int, []provider.Item, error), dst *[]provider.Item) {
		g.Go(func() error {
			total, items, err := fn(ctx, owner, repo, user, r.days, token)
			if err != nil {
				r.logger.Error("[Reporter] Failed to fetch %s for %s/%s: %v", kind, owner, repo, err)
				return nil
			}
			r.logger.Debug("[Reporter] %s: %d of %d matches fetched", kind, len(items), total)
			*dst = items
			return nil
		})
	}
	load("issues", r.forge.Issues, &act.issues)
	load("commits", r.forge.Commits, &act.commits)
	load("discussions", r.forge.Discussions, &act.discussions)
	g.Wait()

	return act
}

func (r *Reporter) aggregate(ctx context.Context, act activity, opts aggregate.Options) ranking.Ledgers {
	var ledgers ranking.Ledgers

	if len(act.issues) > 0 {
		l, err := r.aggregator.Aggregate(ctx, act.issues, opts)
		if err != nil {
			r.logger.Error("[Reporter] Issues: %v", err)
		}
		ledgers.Issues = l
	}

	if len(act.commits) > 0 {
		ledgers.Commits = ledger.New()
		n := r.aggregator.FoldCommits(ctx, act.commits, ledgers.Commits, opts)
		r.logger.Debug("[Reporter] Commits: %d observations", n)
	}

	if len(act.discussions) > 0 {
		l, err := r.aggregator.Aggregate(ctx, act.discussions, opts)
		if err != nil {
			r.logger.Error("[Reporter] Discussions: %v", err)
		}
		ledgers.Discussions = l
	}

	return ledgers
}

func (r *Reporter) section(ctx context.Context, target string, ledgers ranking.Ledgers) (Section, error) {
	var (
		in    correlate.Inputs
		links []string
		count int
	)

	pick := func(l *ledger.Ledger, label string) string {
		if l == nil {
			return ""
		}
		e, ok := l.Get(target)
		if !ok {
			return ""
		}
		count += e.Count()
		links = append(links, e.Links...)
		return fmt.Sprintf("%s by %s:\n%s", label, target, e.SummaryLog())
	}
	in.Commits = pick(ledgers.Commits, "Commits")
	in.Issues = pick(ledgers.Issues, "Issues")
	in.Discussions = pick(ledgers.Discussions, "Discussions")

	if profile, err := r.forge.UserProfile(ctx, target); err != nil {
		r.logger.Debug("[Reporter] No profile for %s: %v", target, err)
	} else if profile != "" {
		in.Profile = "USER_profile: " + profile
	}

	text, err := r.correlator.Correlate(ctx, target, in, count)
	if err != nil {
		return Section{}, err
	}
	return Section{Contributor: target, Text: text, Links: links}, nil
}

// Render formats the report as plain text.
func (rep *Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly report for %s/%s (last %d days)\n", rep.Owner, rep.Repo, rep.Days)
	if rep.Overview != nil && rep.Overview.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", rep.Overview.Summary)
	}

	for _, s := range rep.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", s.Contributor, s.Text)
		if len(s.Links) > 0 {
			b.WriteString("\nSources:\n")
			for _, link := range s.Links {
				fmt.Fprintf(&b, "- %s\n", link)
			}
		}
	}
	return b.String()
}
