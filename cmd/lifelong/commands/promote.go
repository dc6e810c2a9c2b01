// ABOUTME: CLI command to consolidate summaries into project knowledge
// ABOUTME: Runs the promotion stage for active projects or one forced project
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	promoteProject string
	promoteBackend string
)

// NewPromoteCmd creates the promote command
func NewPromoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Consolidate session summaries into project knowledge",
		Long: `Consolidate session summaries into project knowledge.

For each recently active project with enough summarized sessions, extracts
stable patterns, preferences, and gotchas into L1 knowledge entries.
Candidates similar to existing entries confirm them instead of creating
duplicates.

Examples:
  lifelong promote
  lifelong promote --project /home/u/Code/apas
  lifelong promote --backend claude`,
		RunE: runPromote,
	}

	cmd.Flags().StringVar(&promoteProject, "project", "", "Consolidate only this project, bypassing the activity filter")
	cmd.Flags().StringVar(&promoteBackend, "backend", "", "Pin a specific enrichment backend")

	return cmd
}

func runPromote(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.scheduler.RunConsolidation(cmd.Context(), promoteProject, a.backendOverride(promoteBackend))
	if err != nil {
		return fmt.Errorf("promoting: %w", err)
	}

	if jsonOutput() {
		return printJSON(out(cmd), report)
	}

	fmt.Fprintf(out(cmd), "Consolidated %d project(s): %d new entries, %d confirmed\n",
		report.Projects, report.New, report.Confirmed)
	return nil
}
