// ABOUTME: Parser for Gemini CLI session JSON files
// ABOUTME: session-*.json under project-hash directories; hash reversed via trustedFolders.json
package parsers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harper/lifelong-memory/internal/models"
)

// GeminiParser parses Gemini CLI session files. Each file is one JSON
// object with sessionId, projectHash, startTime, lastUpdated, messages[].
// Sessions are keyed by a SHA-256 hash of the project path; the hash is
// reversed through ~/.gemini/trustedFolders.json when possible.
type GeminiParser struct {
	trustedFoldersPath string

	once      sync.Once
	hashToDir map[string]string
}

// NewGeminiParser creates a new GeminiParser
func NewGeminiParser() *GeminiParser {
	home, _ := os.UserHomeDir()
	return &GeminiParser{
		trustedFoldersPath: filepath.Join(home, ".gemini", "trustedFolders.json"),
	}
}

// Source returns the source tag
func (p *GeminiParser) Source() string { return "gemini" }

// Discover walks the base paths for session-*.json files
func (p *GeminiParser) Discover(basePaths []string) ([]string, error) {
	var files []string
	for _, base := range basePaths {
		_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			name := filepath.Base(path)
			if !d.IsDir() && strings.HasPrefix(name, "session-") && strings.HasSuffix(name, ".json") {
				files = append(files, path)
			}
			return nil
		})
	}
	return files, nil
}

func (p *GeminiParser) hashMap() map[string]string {
	p.once.Do(func() {
		p.hashToDir = make(map[string]string)
		data, err := os.ReadFile(p.trustedFoldersPath)
		if err != nil {
			return
		}
		var folders map[string]json.RawMessage
		if err := json.Unmarshal(data, &folders); err != nil {
			return
		}
		for folder := range folders {
			sum := sha256.Sum256([]byte(folder))
			p.hashToDir[hex.EncodeToString(sum[:])] = folder
		}
	})
	return p.hashToDir
}

type geminiSession struct {
	SessionID   string          `json:"sessionId"`
	ProjectHash string          `json:"projectHash"`
	StartTime   string          `json:"startTime"`
	LastUpdated string          `json:"lastUpdated"`
	Messages    []geminiMessage `json:"messages"`
}

type geminiMessage struct {
	Type      string           `json:"type"`
	Timestamp string           `json:"timestamp"`
	Model     string           `json:"model"`
	Content   json.RawMessage  `json:"content"`
	Tokens    *geminiTokens    `json:"tokens"`
	Thoughts  []geminiThought  `json:"thoughts"`
	ToolCalls []geminiToolCall `json:"toolCalls"`
}

type geminiTokens struct {
	Total int `json:"total"`
}

type geminiThought struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

type geminiToolCall struct {
	Name   string          `json:"name"`
	Args   json.RawMessage `json:"args"`
	Result json.RawMessage `json:"result"`
	Status string          `json:"status"`
}

// Parse reads one Gemini session file
func (p *GeminiParser) Parse(path string) (*Parsed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var session geminiSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, nil
	}
	if len(session.Messages) == 0 {
		return nil, nil
	}

	sessionID := session.SessionID
	if sessionID == "" {
		sessionID = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	projectPath := p.hashMap()[session.ProjectHash]
	projectName := ""
	if projectPath != "" {
		projectName = filepath.Base(projectPath)
	} else if len(session.ProjectHash) >= 12 {
		projectName = session.ProjectHash[:12]
	}

	firstTS := isoToEpoch(session.StartTime)
	lastTS := isoToEpoch(session.LastUpdated)

	var (
		messages     []models.Message
		userMsgCount int
		totalTokens  int
		toolsUsed    []string
		model        string
		title        string
	)

	for i := range session.Messages {
		msg := &session.Messages[i]
		ts := isoToEpoch(msg.Timestamp)

		switch msg.Type {
		case "user":
			text := joinGeminiContent(msg.Content)
			if text == "" {
				continue
			}
			messages = append(messages, models.Message{
				Ordinal: len(messages), Role: "user", ContentType: "text",
				ContentText: text, CreatedAt: ts,
			})
			userMsgCount++
			if title == "" {
				title = firstN(text, 200)
			}

		case "gemini":
			if model == "" {
				model = msg.Model
			}
			if msg.Tokens != nil {
				totalTokens += msg.Tokens.Total
			}

			for _, thought := range msg.Thoughts {
				text := thought.Description
				if thought.Subject != "" {
					text = thought.Subject + ": " + thought.Description
				}
				if text == "" {
					continue
				}
				messages = append(messages, models.Message{
					Ordinal: len(messages), Role: "assistant", ContentType: "thinking",
					ContentText: truncate(text, 1000), CreatedAt: ts,
				})
			}

			for _, tc := range msg.ToolCalls {
				if tc.Name == "" {
					continue
				}
				toolsUsed = append(toolsUsed, tc.Name)
				args := string(tc.Args)
				meta, _ := json.Marshal(map[string]string{
					"name": tc.Name, "args": truncate(args, 1000), "status": tc.Status,
				})
				messages = append(messages, models.Message{
					Ordinal: len(messages), Role: "assistant", ContentType: "tool_call",
					ContentText: truncate(args, ToolOutputTruncate),
					ContentJSON: string(meta), ToolName: tc.Name, CreatedAt: ts,
				})

				result := rawToString(tc.Result)
				messages = append(messages, models.Message{
					Ordinal: len(messages), Role: "tool", ContentType: "tool_result",
					ContentText: truncate(result, ToolOutputTruncate), CreatedAt: ts,
				})
			}

			if text := rawToString(msg.Content); strings.TrimSpace(text) != "" {
				messages = append(messages, models.Message{
					Ordinal: len(messages), Role: "assistant", ContentType: "text",
					ContentText: text, CreatedAt: ts,
				})
			}

		case "info":
			text := joinGeminiContent(msg.Content)
			if strings.TrimSpace(text) == "" {
				continue
			}
			messages = append(messages, models.Message{
				Ordinal: len(messages), Role: "system", ContentType: "text",
				ContentText: text, CreatedAt: ts,
			})
		}
	}

	if firstTS == 0 {
		firstTS = fileMtime(path)
	}
	if lastTS == 0 {
		lastTS = firstTS
	}

	return &Parsed{
		Session: &models.Session{
			ID:               sessionID,
			Source:           p.Source(),
			ProjectPath:      projectPath,
			ProjectName:      projectName,
			CWD:              projectPath,
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

// joinGeminiContent flattens user/info content, a string or {text} array
func joinGeminiContent(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		return ""
	}
	var parts []string
	for _, item := range items {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			if str != "" {
				parts = append(parts, str)
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

// rawToString renders raw JSON as text: plain strings unquoted, everything
// else as its JSON encoding
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
