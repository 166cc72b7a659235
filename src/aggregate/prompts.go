package aggregate

import (
	"fmt"
	"strings"

	"devpulse-agent/src/budget"
	"devpulse-agent/src/llm"
	"devpulse-agent/src/provider"
	"devpulse-agent/src/sanitize"
)

const (
	issueBodyWords    = 400
	commentWords      = 200
	maxItemTextChars  = 32_000
	maxPatchChars     = 24_000
	fallbackFocus     = "top contributors, no more than 3,"
	issueTag          = "2-step-issue"
	commitTag         = "2-step-commit"
	discussionTag     = "2-step-discussion"
	contributorFormat = `Present the analysis in a flat JSON structure with a single level of depth, where each key corresponds directly to one multipart sentence that summarises the contributions. Use real user names, never placeholders like 'user_1' or 'contributor_name_1', and skip a contributor if no user name can be attributed to the contribution:
{
  "contributor_name_1": "summary",
  "contributor_name_2": "summary"
}
For example, if one person raised the problem and another provided a fix:
{
  "octocat": "Identified a bug affecting the deployment pipeline.",
  "hubot": "Offered a workaround using an alternative deployment strategy."
}
Reply with the JSON object only.`
)

// threadText renders an opening post and its comments as one budgeted text.
func threadText(verb string, item provider.Item, comments []provider.Comment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User '%s', opened %s titled '%s'", item.Author, verb, item.Title)
	if len(item.Labels) > 0 {
		fmt.Fprintf(&b, ", labeled '%s'", strings.Join(item.Labels, ", "))
	}
	fmt.Fprintf(&b, ", with the following post: '%s'.", budget.Squeeze(sanitize.Text(item.Body), issueBodyWords, 0.7))

	for _, c := range comments {
		fmt.Fprintf(&b, " %s commented: %s", c.Author, budget.Squeeze(sanitize.Text(c.Body), commentWords, 1.0))
	}

	return budget.TruncateChars(b.String(), maxItemTextChars)
}

// focus names who the model should attend to: the target, else known
// contributors who took part, else a generic instruction.
func focus(target string, comments []provider.Comment, known map[string]bool) string {
	if target != "" {
		return target
	}

	var watch []string
	seen := make(map[string]bool)
	for _, c := range comments {
		if known[c.Author] && !seen[c.Author] {
			seen[c.Author] = true
			watch = append(watch, c.Author)
		}
	}
	if len(watch) > 0 {
		return strings.Join(watch, ", ")
	}
	return fallbackFocus
}

func issuePrompt(item provider.Item, text, who string) llm.ChainPrompt {
	return llm.ChainPrompt{
		System: "Analyze the GitHub issues data to identify key problem areas and notable contributions from participants. " +
			"Focus on specific solutions mentioned, and trace evidence of contributions that led to a solution or consensus. " +
			"The goal is to map out significant technical contributions and the developmental story behind the issue's resolution.",
		User1: fmt.Sprintf("Review the GitHub issue created by '%s' with the title '%s'. Examine the discussions thoroughly: %s. "+
			"Extract the essence of the problem, any proposed solutions, and assess the contributions of %s in moving the discussion forward or resolving the issue.",
			item.Author, item.Title, text, who),
		MaxTokens1: 768,
		User2: fmt.Sprintf("Summarize the analysis by touching on the following points: the central problem presented in the issue, "+
			"the primary solutions proposed or accepted, and the significance of key individual's role, specifically '%s', in the discussion's progress or resolution. "+
			"If a person's contribution is minimal or not present, exclude them from the summary. %s", who, contributorFormat),
		MaxTokens2: 384,
	}
}

func commitPrompt(item provider.Item, patch string) llm.ChainPrompt {
	return llm.ChainPrompt{
		System: fmt.Sprintf("Given a commit patch from user %s, analyze its content. Focus on changes that substantively alter code or functionality. "+
			"A good analysis prioritizes the commit message for clues on intent and refrains from overstating the impact of minor changes. "+
			"Aim to provide a balanced, fact-based representation that distinguishes between major and minor contributions to the project. Keep your analysis concise.",
			item.Author),
		User1: fmt.Sprintf("Analyze the commit patch: %s, and its description: %s. Summarize the main changes, but only emphasize modifications that directly affect core functionality. "+
			"Conclude by evaluating the realistic impact of %s's contributions in this commit on the project.",
			patch, item.Title, item.Author),
		MaxTokens1: 384,
		User2: fmt.Sprintf("Condense your analysis into one sentence about %s's contribution in this commit, limited to 110 tokens. %s",
			item.Author, contributorFormat),
		MaxTokens2: 192,
	}
}

func discussionPrompt(item provider.Item, text, who string) llm.ChainPrompt {
	return llm.ChainPrompt{
		System: "Analyze the GitHub discussion to identify the questions raised, the ideas proposed and who shaped the outcome. " +
			"Trace which participants contributed designs, answers or decisions.",
		User1: fmt.Sprintf("Review the GitHub discussion started by '%s' with the title '%s': %s. "+
			"Extract the topic, the main proposals and the contributions of %s.",
			item.Author, item.Title, text, who),
		MaxTokens1: 768,
		User2: fmt.Sprintf("Summarize the role of the participants, specifically '%s', in the discussion. "+
			"If a person's contribution is minimal or not present, exclude them from the summary. %s", who, contributorFormat),
		MaxTokens2: 384,
	}
}
