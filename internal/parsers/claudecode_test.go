// ABOUTME: Tests for the Claude Code transcript parser
// ABOUTME: Uses small JSONL fixtures written to a temp directory
package parsers

import (
	"os"
	"path/filepath"
	"testing"
)

const claudeFixture = `{"type":"user","timestamp":"2025-11-20T10:00:00Z","sessionId":"cc-123","cwd":"/home/u/Code/apas","gitBranch":"main","message":{"role":"user","content":"Fix the login redirect bug"}}
{"type":"assistant","timestamp":"2025-11-20T10:00:30Z","sessionId":"cc-123","message":{"role":"assistant","model":"claude-sonnet-4","content":[{"type":"text","text":"Looking at the auth handler now."},{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"/home/u/Code/apas/auth.go"}}],"usage":{"input_tokens":1200,"output_tokens":300}}}
{"type":"user","timestamp":"2025-11-20T10:00:35Z","sessionId":"cc-123","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":[{"type":"text","text":"package auth ..."}]}]}}
{"type":"progress","timestamp":"2025-11-20T10:00:36Z"}
{"type":"assistant","timestamp":"2025-11-20T10:01:00Z","sessionId":"cc-123","message":{"role":"assistant","model":"claude-sonnet-4","content":[{"type":"thinking","thinking":"The redirect drops the query string."},{"type":"text","text":"Fixed: the redirect was dropping the query string."}]}}
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestClaudeCodeParser_Parse(t *testing.T) {
	path := writeFixture(t, "session.jsonl", claudeFixture)
	parser := NewClaudeCodeParser()

	parsed, err := parser.Parse(path)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if parsed == nil {
		t.Fatal("Parse() = nil, want session")
	}

	s := parsed.Session
	if s.ID != "cc-123" {
		t.Errorf("ID = %s, want cc-123", s.ID)
	}
	if s.Source != "claude_code" {
		t.Errorf("Source = %s, want claude_code", s.Source)
	}
	if s.Model != "claude-sonnet-4" {
		t.Errorf("Model = %s, want claude-sonnet-4", s.Model)
	}
	if s.GitBranch != "main" {
		t.Errorf("GitBranch = %s, want main", s.GitBranch)
	}
	if s.UserMessageCount != 1 {
		t.Errorf("UserMessageCount = %d, want 1 (tool results do not count)", s.UserMessageCount)
	}
	if s.Title != "Fix the login redirect bug" {
		t.Errorf("Title = %q, want the first user message", s.Title)
	}
	if s.TotalTokens != 1500 {
		t.Errorf("TotalTokens = %d, want 1500", s.TotalTokens)
	}
	if s.ToolsUsed != `["Read"]` {
		t.Errorf("ToolsUsed = %s, want [\"Read\"]", s.ToolsUsed)
	}
	if s.FirstMessageAt >= s.LastMessageAt {
		t.Errorf("timestamps not ordered: first=%d last=%d", s.FirstMessageAt, s.LastMessageAt)
	}

	// user text, assistant text, tool_use, tool_result, thinking, final text
	if len(parsed.Messages) != 6 {
		t.Fatalf("got %d messages, want 6", len(parsed.Messages))
	}
	if s.MessageCount != len(parsed.Messages) {
		t.Errorf("MessageCount = %d, want %d", s.MessageCount, len(parsed.Messages))
	}
	for i, msg := range parsed.Messages {
		if msg.Ordinal != i {
			t.Errorf("message %d has ordinal %d", i, msg.Ordinal)
		}
	}
	if parsed.Messages[2].ContentType != "tool_call" || parsed.Messages[2].ToolName != "Read" {
		t.Errorf("message 2 = %s/%s, want tool_call/Read",
			parsed.Messages[2].ContentType, parsed.Messages[2].ToolName)
	}
	if parsed.Messages[3].Role != "tool" || parsed.Messages[3].ContentType != "tool_result" {
		t.Errorf("message 3 = %s/%s, want tool/tool_result",
			parsed.Messages[3].Role, parsed.Messages[3].ContentType)
	}
	if parsed.Messages[4].ContentType != "thinking" {
		t.Errorf("message 4 type = %s, want thinking", parsed.Messages[4].ContentType)
	}
}

func TestClaudeCodeParser_EmptyFile(t *testing.T) {
	path := writeFixture(t, "empty.jsonl", "")
	parser := NewClaudeCodeParser()

	parsed, err := parser.Parse(path)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if parsed != nil {
		t.Errorf("Parse() of empty file = %+v, want nil", parsed)
	}
}

func TestClaudeCodeParser_Discover(t *testing.T) {
	base := t.TempDir()
	projectDir := filepath.Join(base, "-home-u-Code-apas")
	if err := os.MkdirAll(filepath.Join(projectDir, "subagents"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, f := range []string{
		filepath.Join(projectDir, "a.jsonl"),
		filepath.Join(projectDir, "b.jsonl"),
		filepath.Join(projectDir, "notes.txt"),
		filepath.Join(projectDir, "subagents", "c.jsonl"),
		filepath.Join(base, "toplevel.jsonl"),
	} {
		if err := os.WriteFile(f, []byte("{}\n"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	parser := NewClaudeCodeParser()
	files, err := parser.Discover([]string{base, "/nonexistent/path"})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Discover() found %d files, want 2 (project-level jsonl only): %v", len(files), files)
	}
}
