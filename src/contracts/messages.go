// Package contracts defines message types exchanged between report agents.
package contracts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"
)

// Request states.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Topic names used in agentic mode.
const (
	// TopicReportRequests carries report requests.
	TopicReportRequests = "devpulse.report.requests"

	// TopicReportResults carries finished reports and failures.
	TopicReportResults = "devpulse.report.results"
)

// ReportRequest asks for a weekly report.
// Published to: devpulse.report.requests
// Key: RequestKey
type ReportRequest struct {
	RequestID string `json:"request_id"`
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	// User limits the report to one contributor. Empty means the whole repo.
	User      string `json:"user,omitempty"`
	Days      int    `json:"days"`
	Timestamp string `json:"timestamp"`
}

// ReportResult is the outcome of one request.
// Published to: devpulse.report.results
// Key: {request_id}
type ReportResult struct {
	RequestID string `json:"request_id"`
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	User      string `json:"user,omitempty"`
	Status    string `json:"status"`
	Sections  int    `json:"sections"`
	Report    string `json:"report,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// RequestStatus tracks a request through the agents. Report text is not
// persisted; it travels on the results topic only.
type RequestStatus struct {
	RequestID string
	Owner     string
	Repo      string
	User      string
	Days      int
	Status    string // pending, processing, completed, failed
	Sections  int
	Error     string
}

// RequestKey digests what a request asks for, independent of its ID and
// timestamp. Identical asks share a key and so a partition.
func RequestKey(req ReportRequest) (string, error) {
	raw, err := json.Marshal(map[string]any{
		"owner": strings.ToLower(req.Owner),
		"repo":  strings.ToLower(req.Repo),
		"user":  strings.ToLower(req.User),
		"days":  req.Days,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request key: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize request key: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Validate reports whether the request names a repository and a window.
func (r ReportRequest) Validate() error {
	if r.Owner == "" || r.Repo == "" {
		return fmt.Errorf("request %s: owner and repo are required", r.RequestID)
	}
	if r.Days <= 0 {
		return fmt.Errorf("request %s: days must be positive, got %d", r.RequestID, r.Days)
	}
	return nil
}
