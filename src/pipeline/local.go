package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"devpulse-agent/src/agent"
	"devpulse-agent/src/broker"
	"devpulse-agent/src/contracts"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/store"
)

// LocalPipeline runs the report agent in process over the in-memory broker.
type LocalPipeline struct {
	broker *broker.InMemoryBroker
	store  *store.MemoryStore
	logger logger.Logger
	cancel context.CancelFunc

	mu      sync.Mutex
	results map[string]contracts.ReportResult
	waiters map[string][]chan contracts.ReportResult
}

// NewLocalPipeline starts an in-process report agent using runner.
func NewLocalPipeline(runner agent.Runner, log logger.Logger) (*LocalPipeline, error) {
	ctx, cancel := context.WithCancel(context.Background())

	p := &LocalPipeline{
		broker:  broker.NewInMemoryBroker(),
		store:   store.NewMemoryStore(),
		logger:  log,
		cancel:  cancel,
		results: make(map[string]contracts.ReportResult),
		waiters: make(map[string][]chan contracts.ReportResult),
	}

	resultChan, err := p.broker.Subscribe(ctx, contracts.TopicReportResults, "devpulse-local")
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to results: %w", err)
	}
	go p.dispatch(resultChan)

	if err := StartAgent(ctx, p.broker, p.store, runner, log); err != nil {
		cancel()
		p.broker.Close()
		return nil, err
	}

	return p, nil
}

// dispatch records results and wakes waiters.
func (p *LocalPipeline) dispatch(msgChan <-chan broker.Message) {
	for msg := range msgChan {
		var result contracts.ReportResult
		if err := json.Unmarshal(msg.Value, &result); err != nil {
			p.logger.Error("[LocalPipeline] Failed to unmarshal result: %v", err)
			continue
		}

		p.mu.Lock()
		p.results[result.RequestID] = result
		for _, w := range p.waiters[result.RequestID] {
			w <- result
		}
		delete(p.waiters, result.RequestID)
		p.mu.Unlock()
	}
}

// Submit queues a report request for the in-process agent.
func (p *LocalPipeline) Submit(ctx context.Context, owner, repo, user string, days int) (string, error) {
	req := newRequest(owner, repo, user, days)
	if err := submit(ctx, p.broker, p.store, req); err != nil {
		return "", err
	}
	return req.RequestID, nil
}

// Status returns the current status of a request.
func (p *LocalPipeline) Status(ctx context.Context, requestID string) (*contracts.RequestStatus, error) {
	return p.store.GetRequestStatus(ctx, requestID)
}

// List returns recent requests, newest first.
func (p *LocalPipeline) List(ctx context.Context, limit int) ([]contracts.RequestStatus, error) {
	return p.store.ListRequests(ctx, limit)
}

// Wait blocks until the request's result arrives.
func (p *LocalPipeline) Wait(ctx context.Context, requestID string) (*contracts.ReportResult, error) {
	p.mu.Lock()
	if result, ok := p.results[requestID]; ok {
		p.mu.Unlock()
		return &result, nil
	}
	w := make(chan contracts.ReportResult, 1)
	p.waiters[requestID] = append(p.waiters[requestID], w)
	p.mu.Unlock()

	select {
	case result := <-w:
		return &result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the agent and the broker.
func (p *LocalPipeline) Close() error {
	p.cancel()
	return p.broker.Close()
}
