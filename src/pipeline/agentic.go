package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"devpulse-agent/src/broker"
	"devpulse-agent/src/contracts"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/store"
)

// AgenticPipeline implements Pipeline using Redpanda + Postgres.
// Reports are produced by `devpulse agent` processes.
type AgenticPipeline struct {
	broker broker.Broker
	store  store.Store
	logger logger.Logger
}

// NewAgenticPipeline connects to Redpanda and Postgres.
func NewAgenticPipeline(ctx context.Context, cfg *Config, log logger.Logger) (*AgenticPipeline, error) {
	redpandaBroker, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redpanda broker: %w", err)
	}
	if err := redpandaBroker.Ping(ctx); err != nil {
		redpandaBroker.Close()
		return nil, err
	}

	postgresStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		redpandaBroker.Close()
		return nil, fmt.Errorf("failed to create Postgres store: %w", err)
	}

	return NewAgenticPipelineWith(redpandaBroker, postgresStore, log), nil
}

// NewAgenticPipelineWith builds the pipeline on existing backends.
func NewAgenticPipelineWith(brk broker.Broker, st store.Store, log logger.Logger) *AgenticPipeline {
	return &AgenticPipeline{broker: brk, store: st, logger: log}
}

// Broker returns the pipeline's broker, for running an agent on it.
func (p *AgenticPipeline) Broker() broker.Broker {
	return p.broker
}

// Store returns the pipeline's status store.
func (p *AgenticPipeline) Store() store.Store {
	return p.store
}

// Submit records the request in Postgres and publishes it.
func (p *AgenticPipeline) Submit(ctx context.Context, owner, repo, user string, days int) (string, error) {
	req := newRequest(owner, repo, user, days)
	if err := submit(ctx, p.broker, p.store, req); err != nil {
		return "", err
	}
	p.logger.Debug("[AgenticPipeline] Submitted %s for %s/%s", req.RequestID, req.Owner, req.Repo)
	return req.RequestID, nil
}

// Status returns the current status of a request from Postgres.
func (p *AgenticPipeline) Status(ctx context.Context, requestID string) (*contracts.RequestStatus, error) {
	return p.store.GetRequestStatus(ctx, requestID)
}

// List returns recent requests from Postgres.
func (p *AgenticPipeline) List(ctx context.Context, limit int) ([]contracts.RequestStatus, error) {
	return p.store.ListRequests(ctx, limit)
}

// Wait reads the results topic with a private consumer group until the
// request's result appears.
func (p *AgenticPipeline) Wait(ctx context.Context, requestID string) (*contracts.ReportResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgChan, err := p.broker.Subscribe(ctx, contracts.TopicReportResults, "devpulse-wait-"+uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to results: %w", err)
	}

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				return nil, fmt.Errorf("result stream closed before %s completed", requestID)
			}
			if msg.Key != requestID {
				continue
			}
			var result contracts.ReportResult
			if err := json.Unmarshal(msg.Value, &result); err != nil {
				return nil, fmt.Errorf("failed to unmarshal result: %w", err)
			}
			return &result, nil

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close shuts down the pipeline.
func (p *AgenticPipeline) Close() error {
	if err := p.broker.Close(); err != nil {
		return err
	}
	return p.store.Close()
}
