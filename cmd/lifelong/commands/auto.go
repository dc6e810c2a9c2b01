// ABOUTME: CLI command for one gated pipeline run
// ABOUTME: Ingests always; enriches and promotes when the gate allows
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	autoForce   bool
	autoLimit   int
	autoBackend string
)

// NewAutoCmd creates the auto command
func NewAutoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Run the full pipeline: ingest, summarize, promote",
		Long: `Run the full pipeline: ingest, summarize, promote.

Ingestion always runs. The enrichment stages run only when the gate
allows: on the first run of a day, or after the cooldown has elapsed.
Use --force to bypass the gate. Safe to call from cron or a shell hook.

Examples:
  lifelong auto
  lifelong auto --force
  lifelong auto --limit 10 --backend gemini`,
		RunE: runAuto,
	}

	cmd.Flags().BoolVar(&autoForce, "force", false, "Run enrichment even when the gate is closed")
	cmd.Flags().IntVar(&autoLimit, "limit", 0, "Maximum sessions to summarize (0 = no limit)")
	cmd.Flags().StringVar(&autoBackend, "backend", "", "Pin a specific enrichment backend")

	return cmd
}

func runAuto(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	report, decision, err := a.pipeline.Run(cmd.Context(), autoForce, autoLimit, a.backendOverride(autoBackend))
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	if jsonOutput() {
		return printJSON(out(cmd), map[string]interface{}{
			"decision": decision,
			"report":   report,
		})
	}

	fmt.Fprintf(out(cmd), "Gate: %s\n", decision.Reason)
	fmt.Fprintf(out(cmd), "Ingest: %d new, %d updated, %d unchanged\n",
		report.Ingest.Inserted, report.Ingest.Updated, report.Ingest.Unchanged)
	if !decision.MayRun {
		return nil
	}
	fmt.Fprintf(out(cmd), "Summarize: %d of %d succeeded (%d failed)\n",
		report.Enrich.Succeeded, report.Enrich.Attempted, report.Enrich.Failed)
	fmt.Fprintf(out(cmd), "Promote: %d project(s), %d new, %d confirmed\n",
		report.Promote.Projects, report.Promote.New, report.Promote.Confirmed)
	if !quiet {
		fmt.Fprintf(out(cmd), "Done in %.1fs\n", report.Duration)
	}
	return nil
}
