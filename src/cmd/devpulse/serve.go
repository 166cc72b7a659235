package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"devpulse-agent/src/httpapi"
	"devpulse-agent/src/mcp"
	"devpulse-agent/src/pipeline"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports over HTTP",
	Long: `Serve GET /report?owner=&repo=&username=&token= as plain text, plus the
request queue endpoints (POST /requests, GET /requests/{id}).

Queued requests run in process in local mode and on 'devpulse agent' in
agentic mode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := newLogger()
		reporter := newReporter(log)

		p, err := pipeline.New(ctx, pipelineConfig(), reporter, log)
		if err != nil {
			return fmt.Errorf("failed to create pipeline: %w", err)
		}
		defer p.Close()

		addr := serveAddr
		if addr == "" {
			addr = appConfig.HTTPAddr
		}
		srv := httpapi.NewServer(addr, reporter, p, appConfig.Days, log)
		log.Info("Serving reports in %s mode", mode)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	},
}

// mcpCmd runs the MCP server on stdio
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Expose weekly_report, get_section and repo_overview as MCP tools over
stdio. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		return mcp.NewServer(newReporter(log), log).Run()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default HTTP_ADDR)")
}
