// ABOUTME: Tests for regex entity extraction
// ABOUTME: Pattern coverage, ignore lists, and per-session storage
package entities

import (
	"testing"
	"time"

	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/storage"
)

func findByType(results []Extracted, entityType string) []Extracted {
	var out []Extracted
	for _, r := range results {
		if r.EntityType == entityType {
			out = append(out, r)
		}
	}
	return out
}

func TestExtract_FilePaths(t *testing.T) {
	text := "The file /home/u/Code/apas/src/main.py needs to be updated"
	results := findByType(Extract(text), models.EntityFilePath)
	if len(results) != 1 {
		t.Fatalf("got %d file paths, want 1", len(results))
	}
	if results[0].Value != "/home/u/Code/apas/src/main.py" {
		t.Errorf("value = %s, want the full path", results[0].Value)
	}
	if results[0].Context == "" {
		t.Error("context snippet is empty")
	}
}

func TestExtract_Functions(t *testing.T) {
	text := "def process_data(items):\n    pass\nclass MyHandler:\n    pass"
	results := findByType(Extract(text), models.EntityFunction)
	values := make(map[string]bool)
	for _, r := range results {
		values[r.Value] = true
	}
	if !values["process_data"] || !values["MyHandler"] {
		t.Errorf("functions = %v, want process_data and MyHandler", values)
	}
}

func TestExtract_Errors(t *testing.T) {
	text := "Got a FileNotFoundError when trying to open config.yaml"
	results := findByType(Extract(text), models.EntityErrorType)
	if len(results) == 0 {
		t.Fatal("no error types extracted")
	}
	if results[0].Value != "FileNotFoundError" {
		t.Errorf("value = %s, want FileNotFoundError", results[0].Value)
	}
}

func TestExtract_IgnoresNoise(t *testing.T) {
	text := "import os\nwrote to /dev/null\ndef main():"
	results := Extract(text)
	for _, r := range results {
		if r.Value == "os" || r.Value == "/dev/null" || r.Value == "main" {
			t.Errorf("ignored value %q was extracted", r.Value)
		}
	}
}

func TestExtract_DedupesWithinText(t *testing.T) {
	text := "see /home/u/a.py and again /home/u/a.py"
	results := findByType(Extract(text), models.EntityFilePath)
	if len(results) != 1 {
		t.Errorf("got %d results, want 1 (deduplicated)", len(results))
	}
}

func TestExtract_Commands(t *testing.T) {
	text := "$ go test ./internal/...\nsome output"
	results := findByType(Extract(text), models.EntityCommand)
	if len(results) != 1 {
		t.Fatalf("got %d commands, want 1", len(results))
	}
	if results[0].Value != "go test ./internal/..." {
		t.Errorf("value = %q, want the command line", results[0].Value)
	}
}

func TestExtractForSession(t *testing.T) {
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() failed: %v", err)
	}
	defer func() { _ = store.Close() }()
	now := time.Now().Unix()

	session := &models.Session{
		ID: "s1", Source: "codex", Tier: models.TierRaw,
		FirstMessageAt: now - 60, LastMessageAt: now, ToolsUsed: "[]",
	}
	messages := []models.Message{
		{Ordinal: 0, Role: "user", ContentType: "text",
			ContentText: "fix the ImportError in /home/u/Code/apas/app.py", CreatedAt: now},
		{Ordinal: 1, Role: "tool", ContentType: "tool_result",
			ContentText: "another /home/u/other.py mention", CreatedAt: now},
	}
	if err := store.Messages.ReplaceForSession(session, messages, store.Sessions); err != nil {
		t.Fatalf("ReplaceForSession() failed: %v", err)
	}

	count, err := ExtractForSession(store, "s1")
	if err != nil {
		t.Fatalf("ExtractForSession() failed: %v", err)
	}
	// ImportError + one file path; tool messages are skipped
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	top, err := store.Entities.TopForSession("s1", 10)
	if err != nil {
		t.Fatalf("TopForSession() failed: %v", err)
	}
	if len(top) != 2 {
		t.Errorf("stored %d entities, want 2", len(top))
	}

	// Re-extraction replaces, not accumulates
	count, err = ExtractForSession(store, "s1")
	if err != nil {
		t.Fatalf("ExtractForSession() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("re-run count = %d, want 2", count)
	}
}

func TestExtractForSession_MissingSession(t *testing.T) {
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	count, err := ExtractForSession(store, "nope")
	if err != nil {
		t.Fatalf("ExtractForSession() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
