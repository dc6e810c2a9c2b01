// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Entry point for the lifelong memory command tree
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██╗     ██╗███████╗███████╗██╗      ██████╗ ███╗   ██╗ ██████╗
██║     ██║██╔════╝██╔════╝██║     ██╔═══██╗████╗  ██║██╔════╝
██║     ██║█████╗  █████╗  ██║     ██║   ██║██╔██╗ ██║██║  ███╗
██║     ██║██╔══╝  ██╔══╝  ██║     ██║   ██║██║╚██╗██║██║   ██║
███████╗██║██║     ███████╗███████╗╚██████╔╝██║ ╚████║╚██████╔╝
╚══════╝╚═╝╚═╝     ╚══════╝╚══════╝ ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifelong",
		Short: "Long-term memory for CLI coding agents",
		Long: banner + `

Lifelong builds a three-tier memory from your coding agent transcripts:
raw sessions (L3), enriched summaries (L2), and consolidated project
knowledge (L1). Sessions from Claude Code, Codex, and Gemini are ingested
locally; summarization and knowledge promotion run through whichever
enrichment backend is available.

Run 'lifelong auto' periodically (or let the MCP server trigger it) and
query with 'lifelong search', 'lifelong timeline', or 'lifelong context'.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewIngestCmd(),
		NewSummarizeCmd(),
		NewPromoteCmd(),
		NewAutoCmd(),
		NewSearchCmd(),
		NewTimelineCmd(),
		NewRecallCmd(),
		NewContextCmd(),
		NewStatsCmd(),
		NewGateCmd(),
		NewWatchCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
