// ABOUTME: CLI command showing store-wide statistics
// ABOUTME: Session, summary, and knowledge counts by source and tier
package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show memory store statistics",
		Long: `Show memory store statistics.

Counts of sessions, messages, summaries, knowledge entries, and entities,
broken down by source and tier.`,
		RunE: runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.store.Stats.Collect()
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}

	if jsonOutput() {
		return printJSON(out(cmd), stats)
	}

	w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Sessions\t%d\n", stats.TotalSessions)
	fmt.Fprintf(w, "Messages\t%d\n", stats.TotalMessages)
	fmt.Fprintf(w, "Summaries\t%d\n", stats.TotalSummaries)
	fmt.Fprintf(w, "Knowledge\t%d\n", stats.TotalKnowledge)
	fmt.Fprintf(w, "Entities\t%d\n", stats.TotalEntities)
	w.Flush()

	printBreakdown(cmd, "By source", stats.BySource)
	printBreakdown(cmd, "By tier", stats.ByTier)
	return nil
}

func printBreakdown(cmd *cobra.Command, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(out(cmd), "\n%s:\n", label)
	w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s\t%d\n", k, counts[k])
	}
	w.Flush()
}
