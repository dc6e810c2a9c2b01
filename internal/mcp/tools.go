// ABOUTME: MCP tool definitions and registration
// ABOUTME: Exposes search, timeline, project context, and session recall over stdio
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/lifelong-memory/internal/core"
	"github.com/harper/lifelong-memory/internal/search"
	"github.com/harper/lifelong-memory/internal/storage"
)

// RegisterTools registers all MCP tools with the server and returns the
// handlers for shutdown tracking
func RegisterTools(server *mcpserver.MCPServer, store *storage.Store, searcher *search.Searcher, pipeline *core.Pipeline, gate *core.Gate, contextBudget int) *Handlers {
	handlers := &Handlers{
		store:         store,
		searcher:      searcher,
		pipeline:      pipeline,
		gate:          gate,
		contextBudget: contextBudget,
		shutdownWg:    &sync.WaitGroup{},
	}

	server.AddTool(mcp.Tool{
		Name:        "memory_search",
		Description: "Search past coding sessions by content. Results are ranked by relevance, recency, and session importance.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"project": map[string]interface{}{
					"type":        "string",
					"description": "Optional project path to narrow the search",
				},
				"days": map[string]interface{}{
					"type":        "number",
					"description": "Only consider sessions active within this many days (default: no cutoff)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 10)",
					"default":     10,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.Search)

	server.AddTool(mcp.Tool{
		Name:        "memory_timeline",
		Description: "List past coding sessions in reverse chronological order, with summaries where available.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project": map[string]interface{}{
					"type":        "string",
					"description": "Optional project path filter",
				},
				"days": map[string]interface{}{
					"type":        "number",
					"description": "Only include sessions active within this many days",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of sessions (default: 20)",
					"default":     20,
				},
			},
		},
	}, handlers.Timeline)

	server.AddTool(mcp.Tool{
		Name:        "memory_project_context",
		Description: "Get distilled knowledge and recent session summaries for a project, sized for injection into a system prompt.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project_path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute project path",
				},
			},
			Required: []string{"project_path"},
		},
	}, handlers.ProjectContext)

	server.AddTool(mcp.Tool{
		Name:        "memory_recall_session",
		Description: "Read back one session in full: metadata, summary if present, and the message transcript.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to recall",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.RecallSession)

	return handlers
}
