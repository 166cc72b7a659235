package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"devpulse-agent/src/agent"
	"devpulse-agent/src/broker"
	"devpulse-agent/src/contracts"
	"devpulse-agent/src/pipeline"
	"devpulse-agent/src/store"
)

var (
	submitUser string
	submitDays int
	submitWait bool
	listLimit  int
)

// submitCmd queues a report request
var submitCmd = &cobra.Command{
	Use:   "submit [owner/repo]",
	Short: "Queue a report request",
	Long: `Submit a report request and print its request ID.

Local Mode: the request runs in this process; --wait is implied
Agentic Mode: the request is published to Redpanda for 'devpulse agent'

Set REDPANDA_BROKERS to enable agentic mode.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := parseTarget(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := newLogger()
		p, err := pipeline.New(ctx, pipelineConfig(), newReporter(log), log)
		if err != nil {
			return fmt.Errorf("failed to create pipeline: %w", err)
		}
		defer p.Close()

		days := submitDays
		if days <= 0 {
			days = appConfig.Days
		}

		requestID, err := p.Submit(ctx, owner, repo, submitUser, days)
		if err != nil {
			return fmt.Errorf("failed to submit request: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Submitted %s (%s mode)\n", requestID, mode)

		if mode == pipeline.AgenticMode && !submitWait {
			fmt.Println(requestID)
			fmt.Fprintf(os.Stderr, "Check progress with: devpulse status %s\n", requestID)
			return nil
		}

		result, err := p.Wait(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed waiting for %s: %w", requestID, err)
		}
		if result.Status == contracts.StatusFailed {
			return fmt.Errorf("request %s failed: %s", requestID, result.Error)
		}
		fmt.Print(result.Report)
		return nil
	},
}

// statusCmd shows a request's status
var statusCmd = &cobra.Command{
	Use:   "status [request-id]",
	Short: "Show the status of a report request (agentic mode)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := agenticPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Close()

		status, err := p.Status(cmd.Context(), args[0])
		if errors.Is(err, store.ErrRequestNotFound) {
			return fmt.Errorf("unknown request %s", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Printf("Request:  %s\n", status.RequestID)
		fmt.Printf("Repo:     %s/%s\n", status.Owner, status.Repo)
		if status.User != "" {
			fmt.Printf("User:     %s\n", status.User)
		}
		fmt.Printf("Window:   %d days\n", status.Days)
		fmt.Printf("Status:   %s\n", status.Status)
		if status.Status == contracts.StatusCompleted {
			fmt.Printf("Sections: %d\n", status.Sections)
		}
		if status.Error != "" {
			fmt.Printf("Error:    %s\n", status.Error)
		}
		return nil
	},
}

// listCmd lists recent requests
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent report requests (agentic mode)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := agenticPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Close()

		requests, err := p.List(cmd.Context(), listLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REQUEST\tREPO\tUSER\tDAYS\tSTATUS")
		for _, r := range requests {
			fmt.Fprintf(w, "%s\t%s/%s\t%s\t%d\t%s\n", r.RequestID, r.Owner, r.Repo, r.User, r.Days, r.Status)
		}
		return w.Flush()
	},
}

// agentCmd runs a report agent
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run a report agent (agentic mode)",
	Long: `Consume report requests from Redpanda, build the reports, publish them
on the results topic and record progress in Postgres.

Requires REDPANDA_BROKERS and POSTGRES_DSN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mode != pipeline.AgenticMode {
			return errors.New("REDPANDA_BROKERS environment variable is required for the report agent")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := newLogger()
		log.Info("Starting devpulse report agent")
		log.Info("Redpanda brokers: %v", appConfig.RedpandaBrokers)

		brk, err := broker.NewRedpandaBroker(appConfig.RedpandaBrokers, log)
		if err != nil {
			return fmt.Errorf("failed to create broker: %w", err)
		}
		defer brk.Close()

		st, err := store.NewPostgresStore(ctx, appConfig.PostgresDSN)
		if err != nil {
			return fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		defer st.Close()

		a := agent.NewReportAgent(brk, st, newReporter(log), log)
		if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("agent error: %w", err)
		}

		log.Info("Report agent stopped")
		return nil
	},
}

func agenticPipeline(ctx context.Context) (pipeline.Pipeline, error) {
	if mode != pipeline.AgenticMode {
		return nil, errors.New("request tracking needs agentic mode; set REDPANDA_BROKERS and POSTGRES_DSN")
	}
	return pipeline.New(ctx, pipelineConfig(), nil, newLogger())
}

func init() {
	submitCmd.Flags().StringVarP(&submitUser, "user", "u", "", "Limit the report to one contributor")
	submitCmd.Flags().IntVarP(&submitDays, "days", "d", 0, "Report window in days (default from DEVPULSE_DAYS)")
	submitCmd.Flags().BoolVarP(&submitWait, "wait", "w", false, "Wait for the result and print the report")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Number of requests to show")
}
