package mcp

import (
	"strings"
	"sync"

	"devpulse-agent/src/report"
)

// ReportStore keeps finished reports for section drill-down.
type ReportStore interface {
	// Store saves a report under its request ID.
	Store(requestID string, rep *report.Report)
	// Get retrieves one contributor's section.
	Get(requestID, contributor string) (SectionDetail, bool)
	// GetAll retrieves the full report.
	GetAll(requestID string) (*report.Report, bool)
}

// InMemoryStore is a thread-safe in-memory implementation of ReportStore.
type InMemoryStore struct {
	mu       sync.RWMutex
	reports  map[string]*report.Report           // request_id -> report
	sections map[string]map[string]SectionDetail // request_id -> contributor -> section
}

// NewInMemoryStore creates a new in-memory report store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		reports:  make(map[string]*report.Report),
		sections: make(map[string]map[string]SectionDetail),
	}
}

// Store saves a report, indexed by contributor for drill-down.
func (s *InMemoryStore) Store(requestID string, rep *report.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[requestID] = rep

	byName := make(map[string]SectionDetail, len(rep.Sections))
	for _, sec := range rep.Sections {
		byName[strings.ToLower(sec.Contributor)] = SectionDetail{
			Contributor: sec.Contributor,
			Text:        sec.Text,
			Links:       sec.Links,
		}
	}
	s.sections[requestID] = byName
}

// Get retrieves a section by contributor login, ignoring case.
func (s *InMemoryStore) Get(requestID, contributor string) (SectionDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if byName, ok := s.sections[requestID]; ok {
		d, found := byName[strings.ToLower(contributor)]
		return d, found
	}
	return SectionDetail{}, false
}

// GetAll retrieves the full report.
func (s *InMemoryStore) GetAll(requestID string) (*report.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[requestID]
	return r, ok
}
