// Package main provides the devpulse CLI with mode detection.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"devpulse-agent/src/config"
	"devpulse-agent/src/forge"
	"devpulse-agent/src/llm"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/pipeline"
	"devpulse-agent/src/provider"
	"devpulse-agent/src/report"
)

var (
	appConfig *config.Config
	mode      pipeline.Mode
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "devpulse",
	Short: "devpulse - weekly GitHub activity reports",
	Long: `devpulse summarizes a repository's recent issues, commits and discussions
into a per-contributor weekly report using a chat completion backend.

It supports two modes:
- Local Mode: reports run in this process (default)
- Agentic Mode: Redpanda + Postgres, reports run by 'devpulse agent'

Mode is auto-detected based on REDPANDA_BROKERS environment variable.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appConfig, err = config.Load()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		mode = pipeline.DetectMode(pipelineConfig())
		return nil
	},
}

func pipelineConfig() *pipeline.Config {
	return &pipeline.Config{
		RedpandaBrokers: appConfig.RedpandaBrokers,
		PostgresDSN:     appConfig.PostgresDSN,
	}
}

// newLogger writes to stderr so stdout carries only reports and MCP frames.
func newLogger() logger.Logger {
	level := logger.LevelFromString(appConfig.LogLevel)
	if verbose {
		level = logger.LevelFromString("debug")
	}
	return logger.NewSlogLogger(os.Stderr, level)
}

func newReporter(log logger.Logger) *report.Reporter {
	client := llm.NewOpenAIClient(llm.OpenAIOptions{
		APIKey:     appConfig.LLMAPIKey,
		BaseURL:    appConfig.LLMBaseURL,
		Timeout:    2 * time.Minute,
		MaxRetries: 2,
	})
	composer := llm.NewComposer(client, appConfig.LLMModel)
	return report.NewReporter(forge.NewClient(appConfig.GitHubToken), composer, log, appConfig.Days)
}

// parseTarget accepts "owner/repo" or a repository URL.
func parseTarget(arg string) (owner, repo string, err error) {
	owner, repo, err = provider.ParseRepo(arg)
	if err != nil {
		return "", "", provider.WrapError(err)
	}
	return owner, repo, nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
