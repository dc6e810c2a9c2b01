// ABOUTME: CLI command to list sessions chronologically
// ABOUTME: Reverse-chronological listing with summaries where available
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	timelineProject string
	timelineDays    int
	timelineLimit   int
	timelineAfter   string
	timelineBefore  string
)

// NewTimelineCmd creates the timeline command
func NewTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "List past sessions in reverse chronological order",
		Long: `List past sessions in reverse chronological order.

Shows each session's tier, title, and summary outcome where one exists.

Examples:
  lifelong timeline
  lifelong timeline --project /home/u/Code/apas --days 7
  lifelong timeline --limit 50 --format json`,
		RunE: runTimeline,
	}

	cmd.Flags().StringVar(&timelineProject, "project", "", "Restrict to one project path")
	cmd.Flags().IntVar(&timelineDays, "days", 0, "Only sessions active within this many days")
	cmd.Flags().IntVar(&timelineLimit, "limit", 20, "Maximum sessions to list")
	cmd.Flags().StringVar(&timelineAfter, "after", "", "Only sessions active after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&timelineBefore, "before", "", "Only sessions active before this date (YYYY-MM-DD)")

	return cmd
}

func runTimeline(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(timelineLimit, "limit"); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	after, err := parseDate(timelineAfter)
	if err != nil {
		return err
	}
	if after == 0 {
		after = afterCutoff(timelineDays)
	}
	before, err := parseDate(timelineBefore)
	if err != nil {
		return err
	}

	entries, err := a.store.Search.Timeline(timelineProject, after, before, timelineLimit)
	if err != nil {
		return fmt.Errorf("listing timeline: %w", err)
	}

	if len(entries) == 0 {
		if !quiet {
			fmt.Fprintln(out(cmd), "No sessions found")
		}
		return nil
	}

	if jsonOutput() {
		return printJSON(out(cmd), entries)
	}

	w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "WHEN\tTIER\tSOURCE\tTITLE\tSUMMARY\n")
	fmt.Fprintf(w, "----\t----\t------\t-----\t-------\n")
	for i := range entries {
		s := &entries[i].Session
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		summary := entries[i].SummaryText
		if summary == "" {
			summary = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			formatTime(s.LastMessageAt),
			s.Tier,
			s.Source,
			truncate(title, 40),
			truncate(summary, 60))
	}
	w.Flush()
	return nil
}
