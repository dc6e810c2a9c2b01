// ABOUTME: Parser interface and shared helpers for CLI transcript sources
// ABOUTME: Each source adapter normalizes to one session plus its messages
package parsers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/lifelong-memory/internal/models"
)

// ToolOutputTruncate caps stored tool output length
const ToolOutputTruncate = 500

// Parsed is the normalized result of parsing one transcript file
type Parsed struct {
	Session  *models.Session
	Messages []models.Message
}

// Parser adapts one CLI tool's transcript format
type Parser interface {
	// Source returns the source tag ('claude_code', 'codex', 'gemini')
	Source() string
	// Discover finds all transcript files under the given base paths.
	// Missing directories are skipped, not errors.
	Discover(basePaths []string) ([]string, error)
	// Parse reads one transcript file. Returns (nil, nil) for files that
	// hold no usable session (empty, unreadable format variants).
	Parse(path string) (*Parsed, error)
}

// readJSONL reads a JSONL file, skipping blank and malformed lines
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	// Transcript lines routinely exceed the default 64K scanner limit
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var records []json.RawMessage
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			continue
		}
		records = append(records, json.RawMessage(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

// isoToEpoch converts an ISO8601 timestamp string to unix epoch seconds.
// Returns 0 for anything it cannot parse.
func isoToEpoch(ts string) int64 {
	if ts == "" {
		return 0
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// inferProject derives (project_path, project_name) from a working directory.
// Prefers the first directory under a conventional code root; falls back to
// the cwd itself.
func inferProject(cwd string) (string, string) {
	if cwd == "" {
		return "", ""
	}
	home, err := os.UserHomeDir()
	if err != nil || cwd == home || !strings.HasPrefix(cwd, home) {
		return cwd, filepath.Base(cwd)
	}

	parts := strings.Split(filepath.Clean(cwd), string(filepath.Separator))
	for i, part := range parts {
		switch part {
		case "Code", "Projects", "src", "repos", "workspace", "code":
			if i+1 < len(parts) {
				projectPath := string(filepath.Separator) + filepath.Join(parts[1:i+2]...)
				return projectPath, parts[i+1]
			}
		}
	}
	return cwd, filepath.Base(cwd)
}

// truncate caps text at max runes, marking the cut
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…[truncated]"
}

// fileMtime returns a file's modification time as epoch seconds, 0 on error
func fileMtime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}

// firstN returns the first n runes of s
func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
