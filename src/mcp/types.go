// Package mcp provides the MCP server exposing weekly reports as tools.
package mcp

// ManifestResponse is the weekly_report tool response. Sections carry a
// headline only; get_section returns the full text and sources.
type ManifestResponse struct {
	RequestID string           `json:"request_id"`
	Repo      string           `json:"repo"`
	User      string           `json:"user,omitempty"`
	Days      int              `json:"days"`
	Summary   string           `json:"summary,omitempty"`
	Sections  []SectionSummary `json:"sections"`
}

// SectionSummary is the lightweight view of one contributor's section.
type SectionSummary struct {
	Contributor string   `json:"contributor"`
	Headline    string   `json:"headline"`
	Sources     []string `json:"sources"`
	SourceCount int      `json:"source_count"`
}

// SectionDetail is a contributor's full assessment.
type SectionDetail struct {
	Contributor string   `json:"contributor"`
	Text        string   `json:"text"`
	Links       []string `json:"links"`
}

// OverviewResponse is the repo_overview tool response.
type OverviewResponse struct {
	Repo         string   `json:"repo"`
	Summary      string   `json:"summary"`
	Contributors []string `json:"contributors"`
}
