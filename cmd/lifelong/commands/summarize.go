// ABOUTME: CLI command to summarize unsummarized sessions
// ABOUTME: Runs the enrichment stage with bounded concurrency
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	summarizeLimit   int
	summarizeBackend string
)

// NewSummarizeCmd creates the summarize command
func NewSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize sessions that have no summary yet",
		Long: `Summarize sessions that have no summary yet.

Selects stored L3 sessions that pass the quality filter and generates a
structured summary for each through the enrichment router, promoting them
to L2. Runs with bounded concurrency; failures leave sessions at L3 for
the next pass.

Examples:
  lifelong summarize
  lifelong summarize --limit 5
  lifelong summarize --backend openai`,
		RunE: runSummarize,
	}

	cmd.Flags().IntVar(&summarizeLimit, "limit", 0, "Maximum sessions to summarize (0 = no limit)")
	cmd.Flags().StringVar(&summarizeBackend, "backend", "", "Pin a specific enrichment backend")

	return cmd
}

func runSummarize(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.scheduler.RunEnrichment(cmd.Context(), summarizeLimit, a.backendOverride(summarizeBackend))
	if err != nil {
		return fmt.Errorf("summarizing: %w", err)
	}

	if jsonOutput() {
		return printJSON(out(cmd), report)
	}

	fmt.Fprintf(out(cmd), "Summarized %d of %d sessions (%d failed)\n",
		report.Succeeded, report.Attempted, report.Failed)
	return nil
}
