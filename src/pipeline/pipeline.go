// Package pipeline submits report requests and tracks them to completion.
// Local mode runs the report agent in process; agentic mode hands requests
// to agents over Redpanda and tracks status in Postgres.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"devpulse-agent/src/agent"
	"devpulse-agent/src/broker"
	"devpulse-agent/src/contracts"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/store"
)

// Mode selects where requests are processed.
type Mode int

const (
	// LocalMode processes requests in this process with in-memory state.
	LocalMode Mode = iota
	// AgenticMode publishes requests to Redpanda for separate agents.
	AgenticMode
)

func (m Mode) String() string {
	switch m {
	case LocalMode:
		return "local"
	case AgenticMode:
		return "agentic"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Config selects and configures the pipeline backends.
type Config struct {
	RedpandaBrokers []string
	PostgresDSN     string
}

// DetectMode picks AgenticMode when brokers are configured.
func DetectMode(cfg *Config) Mode {
	if cfg != nil && len(cfg.RedpandaBrokers) > 0 {
		return AgenticMode
	}
	return LocalMode
}

// Pipeline accepts report requests and reports on their progress.
type Pipeline interface {
	// Submit queues a report request and returns its ID.
	Submit(ctx context.Context, owner, repo, user string, days int) (string, error)

	// Status returns the current status of a request.
	Status(ctx context.Context, requestID string) (*contracts.RequestStatus, error)

	// List returns up to limit recent requests, newest first.
	List(ctx context.Context, limit int) ([]contracts.RequestStatus, error)

	// Wait blocks until the request's result is published or ctx ends.
	Wait(ctx context.Context, requestID string) (*contracts.ReportResult, error)

	// Close shuts down the pipeline.
	Close() error
}

// New creates the pipeline for the configured mode. runner is used only in
// local mode, where the agent runs in process.
func New(ctx context.Context, cfg *Config, runner agent.Runner, log logger.Logger) (Pipeline, error) {
	switch DetectMode(cfg) {
	case AgenticMode:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("agentic mode requires POSTGRES_DSN")
		}
		return NewAgenticPipeline(ctx, cfg, log)
	default:
		return NewLocalPipeline(runner, log)
	}
}

// StartAgent subscribes a report agent and serves requests in a goroutine.
// The subscription is in place when StartAgent returns.
func StartAgent(ctx context.Context, brk broker.Broker, st store.Store, runner agent.Runner, log logger.Logger) error {
	a := agent.NewReportAgent(brk, st, runner, log)
	msgChan, err := a.Listen(ctx)
	if err != nil {
		return err
	}

	go func() {
		if err := a.Serve(ctx, msgChan); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("[Pipeline] Report agent error: %v", err)
		}
	}()
	return nil
}

func newRequest(owner, repo, user string, days int) contracts.ReportRequest {
	return contracts.ReportRequest{
		RequestID: "req-" + uuid.NewString(),
		Owner:     strings.TrimSpace(owner),
		Repo:      strings.TrimSpace(repo),
		User:      strings.TrimSpace(user),
		Days:      days,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// submit records and publishes a request keyed by what it asks for.
func submit(ctx context.Context, brk broker.Broker, st store.Store, req contracts.ReportRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	key, err := contracts.RequestKey(req)
	if err != nil {
		return err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := st.CreateRequest(ctx, req); err != nil {
		return fmt.Errorf("failed to create request record: %w", err)
	}

	if err := brk.Publish(ctx, contracts.TopicReportRequests, key, data); err != nil {
		return fmt.Errorf("failed to publish request: %w", err)
	}
	return nil
}
