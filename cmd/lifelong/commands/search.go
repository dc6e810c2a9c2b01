// ABOUTME: CLI command to search past sessions
// ABOUTME: Hybrid ranking over full-text relevance, recency, and importance
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchLimit   int
	searchProject string
	searchDays    int
	searchAfter   string
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search past coding sessions",
		Long: `Search past coding sessions.

Full-text matches are re-ranked by recency and session importance, so a
big session from last week outranks a trivial one from yesterday with the
same match.

Examples:
  lifelong search "websocket timeout"
  lifelong search --project /home/u/Code/apas "schema migration"
  lifelong search --days 30 --limit 5 "flaky test"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results to return")
	cmd.Flags().StringVar(&searchProject, "project", "", "Restrict to one project path")
	cmd.Flags().IntVar(&searchDays, "days", 0, "Only sessions active within this many days")
	cmd.Flags().StringVar(&searchAfter, "after", "", "Only sessions active after this date (YYYY-MM-DD)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	after, err := parseDate(searchAfter)
	if err != nil {
		return err
	}
	if after == 0 {
		after = afterCutoff(searchDays)
	}

	results, err := a.searcher.Search(args[0], searchProject, after, searchLimit)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(out(cmd), "No sessions found for query: %s\n", args[0])
		}
		return nil
	}

	if jsonOutput() {
		return printJSON(out(cmd), results)
	}

	w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tWHEN\tTITLE\tSNIPPET\n")
	fmt.Fprintf(w, "-----\t----\t-----\t-------\n")
	for i := range results {
		s := &results[i].Session
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
			results[i].Score,
			formatTime(s.LastMessageAt),
			truncate(title, 40),
			truncate(results[i].Snippet, 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(out(cmd), "\nFound %d result(s)\n", len(results))
	}
	return nil
}
