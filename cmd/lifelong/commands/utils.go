// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Output formatting helpers used by search, timeline, and stats
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a unix timestamp for display relative to now
func formatTime(unix int64) string {
	t := time.Unix(unix, 0)
	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// afterCutoff converts a --days flag to a unix cutoff; zero means no cutoff
func afterCutoff(days int) int64 {
	if days <= 0 {
		return 0
	}
	return time.Now().AddDate(0, 0, -days).Unix()
}

// parseDate converts a YYYY-MM-DD flag value to a unix cutoff; empty means
// no cutoff
func parseDate(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.Unix(), nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintf(w, "%s\n", data)
	return nil
}

// jsonOutput reports whether the command should emit JSON
func jsonOutput() bool {
	return outputFormat == "json"
}

// out is shorthand for the command's stdout
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
