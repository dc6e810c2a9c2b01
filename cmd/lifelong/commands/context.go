// ABOUTME: CLI command to render a project's memory context block
// ABOUTME: Knowledge entries plus recent summaries, sized to a token budget
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/lifelong-memory/internal/search"
)

var contextBudget int

// NewContextCmd creates the context command
func NewContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context <project-path>",
		Short: "Render a project's memory context block",
		Long: `Render a project's memory context block.

Produces the markdown block an agent would receive at session start:
project knowledge entries ordered by confidence, then recent session
summaries, cut off at the token budget. Prints nothing when the project
has no memory yet.

Examples:
  lifelong context /home/u/Code/apas
  lifelong context --budget 1000 /home/u/Code/apas`,
		Args: cobra.ExactArgs(1),
		RunE: runContext,
	}

	cmd.Flags().IntVar(&contextBudget, "budget", 0, "Token budget (0 = configured default)")

	return cmd
}

func runContext(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	budget := contextBudget
	if budget <= 0 {
		budget = a.cfg.ContextBudget
	}

	text, err := search.ProjectContext(a.store, args[0], budget)
	if err != nil {
		return fmt.Errorf("selecting context: %w", err)
	}

	if jsonOutput() {
		return printJSON(out(cmd), map[string]string{"context": text})
	}

	if text == "" {
		if !quiet {
			fmt.Fprintln(out(cmd), "No memory for this project yet")
		}
		return nil
	}
	fmt.Fprintln(out(cmd), text)
	return nil
}
