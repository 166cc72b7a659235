// Package correlate turns a contributor's aggregated activity into a short
// structured assessment.
package correlate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devpulse-agent/src/budget"
	"devpulse-agent/src/llm"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/summary"
)

// Capacity is the shared token budget for all correlation inputs.
const Capacity = 5500

// ErrNoReport is returned when no assessment could be produced.
var ErrNoReport = errors.New("no report produced")

// Inputs are the optional texts correlated for one contributor. An empty
// field is treated as absent.
type Inputs struct {
	Profile     string
	Commits     string
	Issues      string
	Discussions string
}

// Correlator runs the cross-referencing exchange.
type Correlator struct {
	composer *llm.Composer
	logger   logger.Logger
}

// NewCorrelator creates a correlator.
func NewCorrelator(c *llm.Composer, log logger.Logger) *Correlator {
	return &Correlator{composer: c, logger: log}
}

// Correlate budgets the inputs, asks for the five-field assessment of target
// and returns the joined text. It returns ErrNoReport, wrapping the cause,
// for every failure; partial output is never returned.
func (c *Correlator) Correlate(ctx context.Context, target string, in Inputs, itemCountHint int) (string, error) {
	texts := []string{in.Profile, in.Commits, in.Issues, in.Discussions}
	sources := []budget.Source{
		{Name: "profile", Weight: 1},
		{Name: "commits", Weight: 4},
		{Name: "issues", Weight: 4},
		{Name: "discussions", Weight: 2},
	}
	for i := range sources {
		sources[i].Present = strings.TrimSpace(texts[i]) != ""
	}

	plan := budget.Allocate(Capacity, sources)
	if len(plan) == 0 {
		return "", fmt.Errorf("%w: no activity for %s", ErrNoReport, target)
	}

	var parts []string
	for i, s := range sources {
		tokens, ok := plan.Tokens(i)
		if !ok {
			continue
		}
		text := budget.SqueezeTokens(texts[i], tokens, 0.7)
		if text == budget.DecodeFailed {
			c.logger.Error("[Correlator] Tokenizer unavailable for %s, budgeting by words", s.Name)
			text = budget.Squeeze(texts[i], tokens, 0.7)
		}
		text = budget.TruncateChars(text, plan.Chars(i))
		parts = append(parts, text)
		if n, err := budget.CountTokens(text); err == nil {
			c.logger.Debug("[Correlator] %s: %d of %d tokens for %s", s.Name, n, tokens, target)
		}
	}

	max1, max2 := outputCaps(itemCountHint)
	reply, err := c.composer.Chain(ctx, llm.ChainPrompt{
		System:     systemPrompt,
		User1:      analysisPrompt(target, strings.Join(parts, "\n")),
		MaxTokens1: max1,
		User2:      reportPrompt(target),
		MaxTokens2: max2,
	}, "correlate-"+target)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoReport, err)
	}

	text, err := summary.ParseReport(reply)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoReport, err)
	}
	return text, nil
}

// outputCaps scales the two reply caps with the amount of activity.
func outputCaps(itemCountHint int) (int, int) {
	switch {
	case itemCountHint <= 10:
		return 384, 192
	case itemCountHint <= 50:
		return 512, 256
	default:
		return 768, 384
	}
}

const systemPrompt = "You're a GitHub data analysis bot. You're tasked to analyze a GitHub contributor's activity data over the week " +
	"to detect both key impactful contributions and connections between commits and issues. " +
	"Highlight specific code changes, resolutions, and improvements."

func analysisPrompt(target, data string) string {
	return fmt.Sprintf("From the following activity data:\n%s\n"+
		"Analyze the key technical contributions made by %s this week. "+
		"Cross-reference commits with the issues and discussions they relate to.", data, target)
}

func reportPrompt(target string) string {
	return fmt.Sprintf(`Summarize your analysis of %s into a flat JSON structure with just one level of depth. Each key maps directly to a single string value written as a full sentence or a short paragraph, without nested objects or arrays. If no information is available for a point, use an empty string as the value.
Do not include any Markdown formatting such as code block syntax or escaped newlines. The output must be plain JSON that can be parsed directly.

Use the following keys:
{
"impactful": "impactful contributions and their interconnections",
"alignment": "how the contributions align with the project's goals",
"patterns": "recurring patterns or trends in the contributions",
"synergy": "synergy between individual and collective advancement",
"significance": "the significance of the contributions"
}`, target)
}
