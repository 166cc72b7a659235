package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"devpulse-agent/src/provider"
)

var (
	reportUser  string
	reportDays  int
	reportToken string
)

// reportCmd builds a report in this process
var reportCmd = &cobra.Command{
	Use:   "report [owner/repo]",
	Short: "Build a weekly report and print it",
	Long: `Fetch the repository's recent activity, summarize it per contributor and
print the report. Runs in this process in either mode.

Example:
  devpulse report acme/widgets
  devpulse report https://github.com/acme/widgets --user alice --days 14`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := parseTarget(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		reporter := newReporter(newLogger()).WithDays(reportDays)
		rep, err := reporter.Weekly(ctx, owner, repo, reportUser, reportToken)
		if err != nil {
			return provider.WrapError(err)
		}

		fmt.Print(rep.Render())
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportUser, "user", "u", "", "Limit the report to one contributor")
	reportCmd.Flags().IntVarP(&reportDays, "days", "d", 0, "Report window in days (default from DEVPULSE_DAYS)")
	reportCmd.Flags().StringVar(&reportToken, "token", "", "GitHub token for this run (default GITHUB_TOKEN)")
}
