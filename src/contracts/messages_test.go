package contracts

import (
	"encoding/json"
	"testing"
)

func TestRequestKey(t *testing.T) {
	base := ReportRequest{RequestID: "r1", Owner: "acme", Repo: "widgets", User: "alice", Days: 7, Timestamp: "2024-05-20T12:00:00Z"}

	k1, err := RequestKey(base)
	if err != nil {
		t.Fatalf("RequestKey() error = %v", err)
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(k1))
	}

	same := base
	same.RequestID = "r2"
	same.Timestamp = "2024-05-21T00:00:00Z"
	same.Owner = "ACME"
	k2, _ := RequestKey(same)
	if k1 != k2 {
		t.Errorf("keys differ for the same ask: %s vs %s", k1, k2)
	}

	other := base
	other.User = ""
	k3, _ := RequestKey(other)
	if k1 == k3 {
		t.Error("repo-wide and single-user requests share a key")
	}

	longer := base
	longer.Days = 14
	k4, _ := RequestKey(longer)
	if k1 == k4 {
		t.Error("different windows share a key")
	}
}

func TestReportRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ReportRequest
		wantErr bool
	}{
		{"valid", ReportRequest{Owner: "o", Repo: "r", Days: 7}, false},
		{"missing owner", ReportRequest{Repo: "r", Days: 7}, true},
		{"missing repo", ReportRequest{Owner: "o", Days: 7}, true},
		{"zero days", ReportRequest{Owner: "o", Repo: "r"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReportResult_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(ReportResult{RequestID: "r1", Owner: "o", Repo: "r", Status: StatusFailed, Error: "boom"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := m["report"]; ok {
		t.Error("empty report should be omitted")
	}
	if m["error"] != "boom" || m["status"] != StatusFailed {
		t.Errorf("unexpected payload: %s", data)
	}
}
