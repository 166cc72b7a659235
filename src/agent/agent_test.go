package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"devpulse-agent/src/broker"
	"devpulse-agent/src/contracts"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/report"
	"devpulse-agent/src/store"
)

func okRunner(ctx context.Context, req contracts.ReportRequest) (*report.Report, error) {
	return &report.Report{
		Owner: req.Owner,
		Repo:  req.Repo,
		Days:  req.Days,
		Sections: []report.Section{
			{Contributor: "alice", Text: "Fixed the scheduler."},
			{Contributor: "bob", Text: "Reviewed the fix."},
		},
	}, nil
}

func failRunner(ctx context.Context, req contracts.ReportRequest) (*report.Report, error) {
	return nil, report.ErrNoActivity
}

func requestMessage(t *testing.T, req contracts.ReportRequest) broker.Message {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	return broker.Message{Topic: contracts.TopicReportRequests, Key: req.RequestID, Value: data}
}

func receiveResult(t *testing.T, ch <-chan broker.Message) contracts.ReportResult {
	t.Helper()
	select {
	case msg := <-ch:
		var result contracts.ReportResult
		if err := json.Unmarshal(msg.Value, &result); err != nil {
			t.Fatalf("Failed to unmarshal result: %v", err)
		}
		if msg.Key != result.RequestID {
			t.Errorf("result key = %q, want request ID %q", msg.Key, result.RequestID)
		}
		return result
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for result")
	}
	return contracts.ReportResult{}
}

func TestReportAgent_Creation(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()

	agent := NewReportAgent(brk, store.NewMemoryStore(), RunnerFunc(okRunner), logger.NewSilentLogger())
	if agent == nil {
		t.Fatal("Expected agent to be created")
	}
	if agent.broker == nil || agent.store == nil || agent.runner == nil || agent.logger == nil {
		t.Error("Expected all dependencies to be set")
	}
}

func TestReportAgent_ProcessRequest(t *testing.T) {
	tests := []struct {
		name         string
		runner       RunnerFunc
		wantStatus   string
		wantSections int
		wantReport   bool
	}{
		{"completed", okRunner, contracts.StatusCompleted, 2, true},
		{"failed", failRunner, contracts.StatusFailed, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			brk := broker.NewInMemoryBroker()
			defer brk.Close()
			st := store.NewMemoryStore()

			results, err := brk.Subscribe(ctx, contracts.TopicReportResults, "test-consumer")
			if err != nil {
				t.Fatalf("Failed to subscribe: %v", err)
			}

			agent := NewReportAgent(brk, st, tt.runner, logger.NewSilentLogger())
			req := contracts.ReportRequest{RequestID: "req-1", Owner: "acme", Repo: "widgets", Days: 7}
			if err := agent.processRequest(ctx, requestMessage(t, req)); err != nil {
				t.Fatalf("processRequest failed: %v", err)
			}

			result := receiveResult(t, results)
			if result.Status != tt.wantStatus || result.Sections != tt.wantSections {
				t.Errorf("result = %+v", result)
			}
			if (result.Report != "") != tt.wantReport {
				t.Errorf("Report = %q, want present=%v", result.Report, tt.wantReport)
			}
			if tt.wantStatus == contracts.StatusFailed && result.Error == "" {
				t.Error("failed result carries no error")
			}

			status, err := st.GetRequestStatus(ctx, "req-1")
			if err != nil {
				t.Fatalf("GetRequestStatus failed: %v", err)
			}
			if status.Status != tt.wantStatus || status.Sections != tt.wantSections {
				t.Errorf("stored status = %+v", status)
			}
		})
	}
}

func TestReportAgent_RejectsBadMessages(t *testing.T) {
	ctx := context.Background()
	brk := broker.NewInMemoryBroker()
	defer brk.Close()

	called := false
	runner := RunnerFunc(func(ctx context.Context, req contracts.ReportRequest) (*report.Report, error) {
		called = true
		return okRunner(ctx, req)
	})
	agent := NewReportAgent(brk, store.NewMemoryStore(), runner, logger.NewSilentLogger())

	if err := agent.processRequest(ctx, broker.Message{Value: []byte("not json")}); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if err := agent.processRequest(ctx, requestMessage(t, contracts.ReportRequest{RequestID: "r", Repo: "widgets", Days: 7})); err == nil {
		t.Error("expected error for missing owner")
	}
	if called {
		t.Error("runner called for an invalid request")
	}
}

func TestReportAgent_RunLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	st := store.NewMemoryStore()

	results, _ := brk.Subscribe(ctx, contracts.TopicReportResults, "test-consumer")

	agent := NewReportAgent(brk, st, RunnerFunc(okRunner), logger.NewSilentLogger())
	requests, err := agent.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- agent.Serve(ctx, requests) }()

	req := contracts.ReportRequest{RequestID: "req-loop", Owner: "acme", Repo: "widgets", Days: 7}
	if err := brk.Publish(ctx, contracts.TopicReportRequests, req.RequestID, requestMessage(t, req).Value); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	result := receiveResult(t, results)

	if result.Status != contracts.StatusCompleted {
		t.Errorf("Status = %q, want completed", result.Status)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop after cancel")
	}
}
