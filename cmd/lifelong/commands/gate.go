// ABOUTME: CLI command to inspect the run gate
// ABOUTME: Shows whether a pipeline run would proceed and why
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGateCmd creates the gate command
func NewGateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Show whether the pipeline gate is open",
		Long: `Show whether the pipeline gate is open.

Reads the run marker and reports whether an 'auto' run would enrich now,
and whether it would count as the day's first (daily) run. The check is
advisory and does not modify the marker.`,
		RunE: runGate,
	}

	return cmd
}

func runGate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	decision, err := a.gate.Check()
	if err != nil {
		return fmt.Errorf("checking gate: %w", err)
	}

	if jsonOutput() {
		return printJSON(out(cmd), decision)
	}

	state := "closed"
	if decision.MayRun {
		state = "open"
	}
	fmt.Fprintf(out(cmd), "Gate %s: %s\n", state, decision.Reason)
	if decision.Daily {
		fmt.Fprintln(out(cmd), "Next run will be the day's first (daily) run")
	}
	return nil
}
