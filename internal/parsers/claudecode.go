// ABOUTME: Parser for Claude Code session JSONL files
// ABOUTME: One file per session under ~/.claude/projects/{project-slug}/
package parsers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/lifelong-memory/internal/models"
)

// ClaudeCodeParser parses Claude Code transcripts. Each line is a JSON
// object whose "type" is one of "user", "assistant", "progress",
// "file-history-snapshot", "queue-operation".
type ClaudeCodeParser struct{}

// NewClaudeCodeParser creates a new ClaudeCodeParser
func NewClaudeCodeParser() *ClaudeCodeParser {
	return &ClaudeCodeParser{}
}

// Source returns the source tag
func (p *ClaudeCodeParser) Source() string { return "claude_code" }

// Discover finds JSONL files directly under project directories
// (subagent subdirectories are not descended into)
func (p *ClaudeCodeParser) Discover(basePaths []string) ([]string, error) {
	var files []string
	for _, base := range basePaths {
		projectDirs, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, dir := range projectDirs {
			if !dir.IsDir() {
				continue
			}
			entries, err := os.ReadDir(filepath.Join(base, dir.Name()))
			if err != nil {
				continue
			}
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
					continue
				}
				files = append(files, filepath.Join(base, dir.Name(), entry.Name()))
			}
		}
	}
	return files, nil
}

type claudeRecord struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	SessionID string          `json:"sessionId"`
	CWD       string          `json:"cwd"`
	GitBranch string          `json:"gitBranch"`
	Message   json.RawMessage `json:"message"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
	Usage   *claudeUsage    `json:"usage"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	Name      string          `json:"name"`
	ID        string          `json:"id"`
	Input     json.RawMessage `json:"input"`
	Content   json.RawMessage `json:"content"`
	ToolUseID string          `json:"tool_use_id"`
}

// Parse reads one Claude Code session file
func (p *ClaudeCodeParser) Parse(path string) (*Parsed, error) {
	records, err := readJSONL(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	var (
		sessionID, cwd, model, gitBranch string
		toolsUsed                        []string
		totalTokens                      int
		messages                         []models.Message
		firstTS, lastTS                  int64
		userMsgCount                     int
		title                            string
	)

	for _, raw := range records {
		var rec claudeRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		ts := isoToEpoch(rec.Timestamp)
		if ts > 0 && (firstTS == 0 || ts < firstTS) {
			firstTS = ts
		}
		if ts > lastTS {
			lastTS = ts
		}

		switch rec.Type {
		case "file-history-snapshot", "queue-operation", "progress":
			continue
		}

		if sessionID == "" {
			sessionID = rec.SessionID
		}
		if cwd == "" {
			cwd = rec.CWD
		}
		if gitBranch == "" {
			gitBranch = rec.GitBranch
		}

		if len(rec.Message) == 0 {
			continue
		}
		var msg claudeMessage
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			continue
		}
		if model == "" {
			model = msg.Model
		}
		if msg.Usage != nil {
			if total := msg.Usage.InputTokens + msg.Usage.OutputTokens; total > totalTokens {
				totalTokens = total
			}
		}

		switch rec.Type {
		case "user":
			for _, m := range p.parseUserContent(msg.Content, len(messages), ts) {
				messages = append(messages, m)
				if m.ContentType == "text" && m.Role == "user" {
					userMsgCount++
					if title == "" && m.ContentText != "" {
						title = firstN(m.ContentText, 200)
					}
				}
			}
		case "assistant":
			for _, m := range p.parseAssistantContent(msg.Content, len(messages), ts) {
				messages = append(messages, m)
				if m.ToolName != "" {
					toolsUsed = append(toolsUsed, m.ToolName)
				}
			}
		}
	}

	if sessionID == "" {
		sessionID = strings.TrimSuffix(filepath.Base(path), ".jsonl")
	}
	if firstTS == 0 {
		firstTS = fileMtime(path)
	}
	if lastTS == 0 {
		lastTS = firstTS
	}

	projectPath, projectName := inferProject(cwd)

	return &Parsed{
		Session: &models.Session{
			ID:               sessionID,
			Source:           p.Source(),
			ProjectPath:      projectPath,
			ProjectName:      projectName,
			CWD:              cwd,
			Model:            model,
			GitBranch:        gitBranch,
			FirstMessageAt:   firstTS,
			LastMessageAt:    lastTS,
			MessageCount:     len(messages),
			UserMessageCount: userMsgCount,
			TotalTokens:      totalTokens,
			ToolsUsed:        models.MarshalTools(toolsUsed),
			Tier:             models.TierRaw,
			RawPath:          path,
			Title:            title,
		},
		Messages: messages,
	}, nil
}

// parseUserContent handles user message content, a string or block array
func (p *ClaudeCodeParser) parseUserContent(content json.RawMessage, ordinal int, ts int64) []models.Message {
	var msgs []models.Message

	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		if strings.TrimSpace(text) != "" {
			msgs = append(msgs, models.Message{
				Ordinal: ordinal, Role: "user", ContentType: "text",
				ContentText: text, CreatedAt: ts,
			})
		}
		return msgs
	}

	var blocks []claudeContentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return nil
	}
	for _, block := range blocks {
		switch block.Type {
		case "text":
			if strings.TrimSpace(block.Text) == "" {
				continue
			}
			msgs = append(msgs, models.Message{
				Ordinal: ordinal + len(msgs), Role: "user", ContentType: "text",
				ContentText: block.Text, CreatedAt: ts,
			})
		case "tool_result":
			meta, _ := json.Marshal(map[string]string{"tool_use_id": block.ToolUseID})
			msgs = append(msgs, models.Message{
				Ordinal: ordinal + len(msgs), Role: "tool", ContentType: "tool_result",
				ContentText: truncate(extractBlockText(block.Content), ToolOutputTruncate),
				ContentJSON: string(meta), CreatedAt: ts,
			})
		}
	}
	return msgs
}

// parseAssistantContent handles assistant content blocks
func (p *ClaudeCodeParser) parseAssistantContent(content json.RawMessage, ordinal int, ts int64) []models.Message {
	var msgs []models.Message

	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		if strings.TrimSpace(text) != "" {
			msgs = append(msgs, models.Message{
				Ordinal: ordinal, Role: "assistant", ContentType: "text",
				ContentText: text, CreatedAt: ts,
			})
		}
		return msgs
	}

	var blocks []claudeContentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return nil
	}
	for _, block := range blocks {
		switch block.Type {
		case "text":
			if strings.TrimSpace(block.Text) == "" {
				continue
			}
			msgs = append(msgs, models.Message{
				Ordinal: ordinal + len(msgs), Role: "assistant", ContentType: "text",
				ContentText: block.Text, CreatedAt: ts,
			})
		case "thinking":
			if strings.TrimSpace(block.Thinking) == "" {
				continue
			}
			msgs = append(msgs, models.Message{
				Ordinal: ordinal + len(msgs), Role: "assistant", ContentType: "thinking",
				ContentText: truncate(block.Thinking, 1000), CreatedAt: ts,
			})
		case "tool_use":
			input := string(block.Input)
			meta, _ := json.Marshal(map[string]string{
				"id": block.ID, "name": block.Name, "input": truncate(input, 1000),
			})
			msgs = append(msgs, models.Message{
				Ordinal: ordinal + len(msgs), Role: "assistant", ContentType: "tool_call",
				ContentText: truncate(input, ToolOutputTruncate),
				ContentJSON: string(meta), ToolName: block.Name, CreatedAt: ts,
			})
		}
	}
	return msgs
}

// extractBlockText pulls text from tool_result content, a string or block list
func extractBlockText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return text
	}
	var blocks []claudeContentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return string(content)
	}
	var parts []string
	for _, block := range blocks {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
