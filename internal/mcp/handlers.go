// ABOUTME: MCP tool handler implementations
// ABOUTME: Each call refreshes ingestion and may kick the daily pipeline in the background
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/lifelong-memory/internal/core"
	"github.com/harper/lifelong-memory/internal/search"
	"github.com/harper/lifelong-memory/internal/storage"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	store         *storage.Store
	searcher      *search.Searcher
	pipeline      *core.Pipeline
	gate          *core.Gate
	contextBudget int

	shutdownWg *sync.WaitGroup
	// pipelineRunning guards against stacking background runs
	pipelineRunning atomic.Bool
}

// Shutdown waits for any background pipeline run to finish
func (h *Handlers) Shutdown() {
	h.shutdownWg.Wait()
}

// refresh does a lightweight ingest so queries see the latest transcripts,
// then kicks the full pipeline in the background when the daily gate fires.
// Refresh failures never fail the query; stale answers beat no answers.
func (h *Handlers) refresh() {
	if h.pipeline == nil {
		return
	}
	if _, err := h.pipeline.Ingest(); err != nil {
		log.Printf("ingest refresh failed: %v", err)
	}

	decision, err := h.gate.Check()
	if err != nil || !decision.Daily {
		return
	}
	if !h.pipelineRunning.CompareAndSwap(false, true) {
		return
	}
	h.shutdownWg.Add(1)
	go func() {
		defer h.shutdownWg.Done()
		defer h.pipelineRunning.Store(false)
		if _, _, err := h.pipeline.Run(context.Background(), false, 0, ""); err != nil {
			log.Printf("background pipeline run failed: %v", err)
		}
	}()
}

// Search handles the memory_search tool
func (h *Handlers) Search(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	project := request.GetString("project", "")
	limit := request.GetInt("limit", 10)
	days := request.GetInt("days", 0)

	h.refresh()

	var after int64
	if days > 0 {
		after = time.Now().AddDate(0, 0, -days).Unix()
	}

	results, err := h.searcher.Search(query, project, after, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	hits := make([]map[string]interface{}, 0, len(results))
	for i := range results {
		s := &results[i].Session
		hits = append(hits, map[string]interface{}{
			"session_id":      s.ID,
			"title":           s.Title,
			"project_path":    s.ProjectPath,
			"source":          s.Source,
			"last_message_at": time.Unix(s.LastMessageAt, 0).Format(time.RFC3339),
			"score":           results[i].Score,
			"snippet":         results[i].Snippet,
		})
	}

	responseJSON, err := json.Marshal(map[string]interface{}{"results": hits})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// Timeline handles the memory_timeline tool
func (h *Handlers) Timeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := request.GetString("project", "")
	limit := request.GetInt("limit", 20)
	days := request.GetInt("days", 0)

	h.refresh()

	var after int64
	if days > 0 {
		after = time.Now().AddDate(0, 0, -days).Unix()
	}

	entries, err := h.store.Search.Timeline(project, after, 0, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("timeline query failed: %v", err)), nil
	}

	sessions := make([]map[string]interface{}, 0, len(entries))
	for i := range entries {
		s := &entries[i].Session
		sessions = append(sessions, map[string]interface{}{
			"session_id":      s.ID,
			"title":           s.Title,
			"project_path":    s.ProjectPath,
			"source":          s.Source,
			"tier":            s.Tier,
			"last_message_at": time.Unix(s.LastMessageAt, 0).Format(time.RFC3339),
			"summary":         entries[i].SummaryText,
			"outcome":         entries[i].Outcome,
		})
	}

	responseJSON, err := json.Marshal(map[string]interface{}{"sessions": sessions})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ProjectContext handles the memory_project_context tool
func (h *Handlers) ProjectContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath, err := request.RequireString("project_path")
	if err != nil {
		return mcp.NewToolResultError("project_path argument is required and must be a string"), nil
	}

	h.refresh()

	text, err := search.ProjectContext(h.store, projectPath, h.contextBudget)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("context selection failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(map[string]interface{}{"context": text})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// RecallSession handles the memory_recall_session tool
func (h *Handlers) RecallSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}

	session, err := h.store.Sessions.GetByID(sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session lookup failed: %v", err)), nil
	}
	if session == nil {
		return mcp.NewToolResultError(fmt.Sprintf("session %s not found", sessionID)), nil
	}

	messages, err := h.store.Messages.GetForSession(sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("message lookup failed: %v", err)), nil
	}
	summary, err := h.store.Summaries.Get(sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary lookup failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"session":    session,
		"transcript": core.FormatConversation(messages, 500),
	}
	if summary != nil {
		response["summary"] = summary
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
