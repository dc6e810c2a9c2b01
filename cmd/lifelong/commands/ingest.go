// ABOUTME: CLI command for a standalone ingestion pass
// ABOUTME: Parses configured transcript sources into the store without enrichment
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/lifelong-memory/internal/ingest"
	"github.com/harper/lifelong-memory/internal/parsers"
)

var ingestSource string

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest transcripts from all configured sources",
		Long: `Ingest transcripts from all configured sources.

Discovers and parses session files from Claude Code, Codex, and Gemini
transcript directories, storing new sessions and re-reading changed ones.
No enrichment backends are called; this is fast and safe to run anytime.

Examples:
  lifelong ingest
  lifelong ingest --source codex
  lifelong ingest --format json`,
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestSource, "source", "", "Ingest only this source (claude_code, codex, gemini)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ingestor := a.ingestor
	if ingestSource != "" {
		root, ok := a.cfg.SourcePaths()[ingestSource]
		if !ok {
			return fmt.Errorf("unknown or disabled source %q", ingestSource)
		}
		ingestor = ingest.NewIngestor(a.store, parsers.Registry(map[string]string{ingestSource: root}), a.quality)
		ingestor.SetVerbose(verbose)
	}

	report, err := ingestor.Run()
	if err != nil {
		return fmt.Errorf("ingesting: %w", err)
	}

	if jsonOutput() {
		return printJSON(out(cmd), report)
	}

	fmt.Fprintf(out(cmd), "Discovered %d files: %d new, %d updated, %d unchanged, %d skipped\n",
		report.Discovered, report.Inserted, report.Updated, report.Unchanged, report.Skipped)
	if report.ParseErrors > 0 && !quiet {
		fmt.Fprintf(out(cmd), "%d files failed to parse\n", report.ParseErrors)
	}
	return nil
}
