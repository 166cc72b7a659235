package mcp

import (
	"devpulse-agent/src/report"
)

// ToManifest converts a report to the lightweight tool response.
func ToManifest(requestID string, rep *report.Report) ManifestResponse {
	m := ManifestResponse{
		RequestID: requestID,
		Repo:      rep.Owner + "/" + rep.Repo,
		User:      rep.User,
		Days:      rep.Days,
		Sections:  make([]SectionSummary, 0, len(rep.Sections)),
	}
	if rep.Overview != nil {
		m.Summary = normalizeWhitespace(rep.Overview.Summary)
	}

	for _, s := range rep.Sections {
		m.Sections = append(m.Sections, toSummary(s))
	}
	return m
}

func toSummary(s report.Section) SectionSummary {
	return SectionSummary{
		Contributor: s.Contributor,
		Headline:    headline(s.Text),
		Sources:     compressLinks(s.Links, maxManifestSources),
		SourceCount: len(s.Links),
	}
}
