// ABOUTME: Parser for Codex CLI session JSONL files
// ABOUTME: rollout-*.jsonl under dated directories, payload-typed records
package parsers

import (
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/harper/lifelong-memory/internal/models"
)

// CodexParser parses Codex rollout files. Each line has
// {"timestamp", "type", "payload"} with types session_meta, turn_context,
// response_item, event_msg.
type CodexParser struct{}

// NewCodexParser creates a new CodexParser
func NewCodexParser() *CodexParser {
	return &CodexParser{}
}

// Source returns the source tag
func (p *CodexParser) Source() string { return "codex" }

// Discover walks the session tree for rollout-*.jsonl files
func (p *CodexParser) Discover(basePaths []string) ([]string, error) {
	var files []string
	for _, base := range basePaths {
		_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			name := filepath.Base(path)
			if !d.IsDir() && strings.HasPrefix(name, "rollout-") && strings.HasSuffix(name, ".jsonl") {
				files = append(files, path)
			}
			return nil
		})
	}
	return files, nil
}

type codexRecord struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type codexPayload struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	CWD       string          `json:"cwd"`
	Model     string          `json:"model"`
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Summary   json.RawMessage `json:"summary"`
	Name      string          `json:"name"`
	Arguments string          `json:"arguments"`
	Input     json.RawMessage `json:"input"`
	Output    string          `json:"output"`
	CallID    string          `json:"call_id"`
	Message   string          `json:"message"`
	Info      *codexTokenInfo `json:"info"`
}

type codexTokenInfo struct {
	TotalTokenUsage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"total_token_usage"`
}

// injectedContextPrefixes mark user messages that tooling, not the user,
// put into the transcript. They never supply a session title and they do
// not count toward substantive early user messages.
var injectedContextPrefixes = []string{
	"# AGENTS.md",
	"<environment_context>",
	"# Context from my IDE",
	"<INSTRUCTIONS>",
	"<permissions",
	"Read the file /var/folders",
	"Read the file /tmp",
}

// IsInjectedContext reports whether text looks machine-injected
func IsInjectedContext(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, prefix := range injectedContextPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// Parse reads one Codex rollout file
func (p *CodexParser) Parse(path string) (*Parsed, error) {
	records, err := readJSONL(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	var (
		sessionID, cwd, model string
		toolsUsed             []string
		totalTokens           int
		messages              []models.Message
		firstTS, lastTS       int64
		userMsgCount          int
		title                 string
	)

	for _, raw := range records {
		var rec codexRecord
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

		var payload codexPayload
		if len(rec.Payload) > 0 {
			if err := json.Unmarshal(rec.Payload, &payload); err != nil {
				continue
			}
		}

		switch rec.Type {
		case "session_meta":
			sessionID = payload.ID
			if cwd == "" {
				cwd = payload.CWD
			}

		case "turn_context":
			if cwd == "" {
				cwd = payload.CWD
			}
			if model == "" {
				model = payload.Model
			}

		case "response_item":
			msg := p.parseResponseItem(&payload, len(messages), ts)
			if msg == nil {
				continue
			}
			messages = append(messages, *msg)
			if msg.Role == "user" && msg.ContentType == "text" {
				userMsgCount++
				text := strings.TrimSpace(msg.ContentText)
				// Large instruction blocks and injected context never title a session
				if title == "" && text != "" && !IsInjectedContext(text) && len(text) < 2000 {
					title = firstN(text, 200)
				}
			}
			if msg.ToolName != "" {
				toolsUsed = append(toolsUsed, msg.ToolName)
			}

		case "event_msg":
			switch payload.Type {
			case "user_message":
				if payload.Message == "" {
					continue
				}
				messages = append(messages, models.Message{
					Ordinal: len(messages), Role: "user", ContentType: "text",
					ContentText: payload.Message, CreatedAt: ts,
				})
				userMsgCount++
				if title == "" {
					title = firstN(payload.Message, 200)
				}
			case "token_count":
				if payload.Info != nil && payload.Info.TotalTokenUsage.TotalTokens > 0 {
					totalTokens = payload.Info.TotalTokenUsage.TotalTokens
				}
			}
		}
	}

	if sessionID == "" {
		sessionID = strings.TrimPrefix(strings.TrimSuffix(filepath.Base(path), ".jsonl"), "rollout-")
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

func (p *CodexParser) parseResponseItem(payload *codexPayload, ordinal int, ts int64) *models.Message {
	switch payload.Type {
	case "message":
		text := joinTextParts(payload.Content)
		if text == "" {
			return nil
		}
		role := payload.Role
		if role == "" {
			role = "user"
		}
		return &models.Message{
			Ordinal: ordinal, Role: role, ContentType: "text",
			ContentText: text, CreatedAt: ts,
		}

	case "reasoning":
		text := joinTextParts(payload.Summary)
		if text == "" {
			return nil
		}
		return &models.Message{
			Ordinal: ordinal, Role: "assistant", ContentType: "thinking",
			ContentText: text, CreatedAt: ts,
		}

	case "function_call":
		meta, _ := json.Marshal(map[string]string{
			"name": payload.Name, "arguments": payload.Arguments, "call_id": payload.CallID,
		})
		return &models.Message{
			Ordinal: ordinal, Role: "assistant", ContentType: "tool_call",
			ContentText: truncate(payload.Arguments, ToolOutputTruncate),
			ContentJSON: string(meta), ToolName: payload.Name, CreatedAt: ts,
		}

	case "function_call_output":
		meta, _ := json.Marshal(map[string]string{
			"call_id": payload.CallID, "output": truncate(payload.Output, 1000),
		})
		return &models.Message{
			Ordinal: ordinal, Role: "tool", ContentType: "tool_result",
			ContentText: truncate(payload.Output, ToolOutputTruncate),
			ContentJSON: string(meta), CreatedAt: ts,
		}

	case "custom_tool_call":
		input := string(payload.Input)
		meta, _ := json.Marshal(map[string]string{
			"name": payload.Name, "input": truncate(input, 1000), "call_id": payload.CallID,
		})
		return &models.Message{
			Ordinal: ordinal, Role: "assistant", ContentType: "tool_call",
			ContentText: truncate(input, ToolOutputTruncate),
			ContentJSON: string(meta), ToolName: payload.Name, CreatedAt: ts,
		}

	case "custom_tool_call_output":
		return &models.Message{
			Ordinal: ordinal, Role: "tool", ContentType: "tool_result",
			ContentText: truncate(payload.Output, ToolOutputTruncate), CreatedAt: ts,
		}
	}
	return nil
}

// joinTextParts flattens a content array of strings or {text: ...} objects
func joinTextParts(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		return ""
	}
	var parts []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				parts = append(parts, s)
			}
			continue
		}
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && obj.Text != "" {
			parts = append(parts, obj.Text)
		}
	}
	return strings.Join(parts, "\n")
}
