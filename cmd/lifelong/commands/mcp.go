// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to query memory via stdio
package commands

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/lifelong-memory/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs lifelong as an MCP (Model Context Protocol) server over stdio,
exposing memory_search, memory_timeline, memory_project_context, and
memory_recall_session. Each call refreshes ingestion, and the day's
first call kicks a full pipeline run in the background.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by the agent)
  lifelong mcp

  # Configure in the agent's MCP config:
  # {
  #   "mcpServers": {
  #     "lifelong": {
  #       "command": "lifelong",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer(
		"Lifelong Memory",
		versionInfo.Version,
	)

	// Register MCP tools and get handlers for shutdown
	handlers := mcp.RegisterTools(server, a.store, a.searcher, a.pipeline, a.gate, a.cfg.ContextBudget)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("lifelong MCP server starting on stdio...")
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		// Wait for any background pipeline run to finish
		handlers.Shutdown()

		if err := a.Close(); err != nil {
			log.Printf("Warning: Error closing storage: %v", err)
		}

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		_ = a.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
