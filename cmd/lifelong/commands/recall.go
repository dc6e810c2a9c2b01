// ABOUTME: CLI command to read back one session in full
// ABOUTME: Prints metadata, the summary if present, and the transcript
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/lifelong-memory/internal/core"
)

// NewRecallCmd creates the recall command
func NewRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall <session-id>",
		Short: "Read back one session in full",
		Long: `Read back one session in full.

Prints the session's metadata, its summary when one has been generated,
and the message transcript with long content truncated.

Examples:
  lifelong recall 0199b2c4-7e31-7aa2-8f11-d0c2a9e4b771
  lifelong recall --format json 0199b2c4-7e31-7aa2-8f11-d0c2a9e4b771`,
		Args: cobra.ExactArgs(1),
		RunE: runRecall,
	}

	return cmd
}

func runRecall(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := args[0]
	session, err := a.store.Sessions.GetByID(sessionID)
	if err != nil {
		return fmt.Errorf("looking up session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session %s not found", sessionID)
	}

	messages, err := a.store.Messages.GetForSession(sessionID)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}
	summary, err := a.store.Summaries.Get(sessionID)
	if err != nil {
		return fmt.Errorf("loading summary: %w", err)
	}

	if jsonOutput() {
		response := map[string]interface{}{
			"session":    session,
			"transcript": core.FormatConversation(messages, 500),
		}
		if summary != nil {
			response["summary"] = summary
		}
		return printJSON(out(cmd), response)
	}

	title := session.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(out(cmd), "Session: %s\n", session.ID)
	fmt.Fprintf(out(cmd), "Title:   %s\n", title)
	fmt.Fprintf(out(cmd), "Project: %s\n", session.ProjectPath)
	fmt.Fprintf(out(cmd), "Source:  %s (%s, tier %s)\n", session.Source, session.Model, session.Tier)
	fmt.Fprintf(out(cmd), "Active:  %s, %d messages (%d from user)\n",
		formatTime(session.LastMessageAt), session.MessageCount, session.UserMessageCount)

	if summary != nil {
		fmt.Fprintf(out(cmd), "\nSummary (%s, via %s):\n%s\n", summary.Outcome, summary.GeneratorBackend, summary.SummaryText)
	}

	fmt.Fprintf(out(cmd), "\nTranscript:\n%s\n", core.FormatConversation(messages, 500))
	return nil
}
