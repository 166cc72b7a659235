// Package agent provides the report agent. It consumes report requests from
// the broker, runs them and publishes the results.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"devpulse-agent/src/broker"
	"devpulse-agent/src/contracts"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/report"
	"devpulse-agent/src/store"
)

// GroupID is the consumer group shared by all report agents.
const GroupID = "devpulse-report"

// Runner produces a report for one request.
type Runner interface {
	Handle(ctx context.Context, req contracts.ReportRequest) (*report.Report, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, req contracts.ReportRequest) (*report.Report, error)

// Handle calls f.
func (f RunnerFunc) Handle(ctx context.Context, req contracts.ReportRequest) (*report.Report, error) {
	return f(ctx, req)
}

// ReportAgent consumes report requests and publishes report results.
type ReportAgent struct {
	broker broker.Broker
	store  store.Store
	runner Runner
	logger logger.Logger
}

// NewReportAgent creates a new report agent.
func NewReportAgent(brk broker.Broker, st store.Store, runner Runner, log logger.Logger) *ReportAgent {
	return &ReportAgent{
		broker: brk,
		store:  st,
		runner: runner,
		logger: log,
	}
}

// Run starts the agent's main loop.
// It subscribes to devpulse.report.requests and handles requests one at a time.
func (a *ReportAgent) Run(ctx context.Context) error {
	msgChan, err := a.Listen(ctx)
	if err != nil {
		return err
	}
	return a.Serve(ctx, msgChan)
}

// Listen subscribes to the request topic. Requests published after Listen
// returns are delivered to the channel.
func (a *ReportAgent) Listen(ctx context.Context) (<-chan broker.Message, error) {
	a.logger.Info("[ReportAgent] Starting...")

	msgChan, err := a.broker.Subscribe(ctx, contracts.TopicReportRequests, GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicReportRequests, err)
	}

	a.logger.Info("[ReportAgent] Listening for requests on '%s' topic...", contracts.TopicReportRequests)
	return msgChan, nil
}

// Serve handles requests from msgChan until it closes or ctx ends.
func (a *ReportAgent) Serve(ctx context.Context, msgChan <-chan broker.Message) error {
	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("[ReportAgent] Message channel closed, shutting down")
				return nil
			}

			if err := a.processRequest(ctx, msg); err != nil {
				a.logger.Error("[ReportAgent] Error processing request: %v", err)
			}

		case <-ctx.Done():
			a.logger.Info("[ReportAgent] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

// processRequest runs one request and publishes its result. Report failures
// are published as failed results; only transport and store errors are
// returned.
func (a *ReportAgent) processRequest(ctx context.Context, msg broker.Message) error {
	var req contracts.ReportRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	a.logger.Info("[ReportAgent] Processing %s: %s/%s user=%q days=%d",
		req.RequestID, req.Owner, req.Repo, req.User, req.Days)

	// requests published by another process may not have a row yet
	if err := a.store.CreateRequest(ctx, req); err != nil {
		return err
	}
	if err := a.setStatus(ctx, &contracts.RequestStatus{RequestID: req.RequestID, Status: contracts.StatusProcessing}); err != nil {
		return err
	}

	result := contracts.ReportResult{
		RequestID: req.RequestID,
		Owner:     req.Owner,
		Repo:      req.Repo,
		User:      req.User,
	}
	status := &contracts.RequestStatus{RequestID: req.RequestID}

	rep, err := a.runner.Handle(ctx, req)
	if err != nil {
		a.logger.Error("[ReportAgent] Request %s failed: %v", req.RequestID, err)
		result.Status = contracts.StatusFailed
		result.Error = err.Error()
		status.Status = contracts.StatusFailed
		status.Error = err.Error()
	} else {
		result.Status = contracts.StatusCompleted
		result.Sections = len(rep.Sections)
		result.Report = rep.Render()
		status.Status = contracts.StatusCompleted
		status.Sections = len(rep.Sections)
	}
	result.Timestamp = time.Now().Format(time.RFC3339)

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := a.broker.Publish(ctx, contracts.TopicReportResults, req.RequestID, data); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}

	if err := a.setStatus(ctx, status); err != nil {
		return err
	}

	a.logger.Info("[ReportAgent] Request %s %s (%d sections)", req.RequestID, result.Status, result.Sections)
	return nil
}

func (a *ReportAgent) setStatus(ctx context.Context, status *contracts.RequestStatus) error {
	if err := a.store.UpdateRequestStatus(ctx, status); err != nil {
		return fmt.Errorf("failed to update status of %s: %w", status.RequestID, err)
	}
	return nil
}
