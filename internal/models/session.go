// ABOUTME: Session and message models for the three-tier memory store
// ABOUTME: Tier 3 (raw) records normalized from CLI transcript sources
package models

import "encoding/json"

// Tier labels for sessions. A session starts raw (L3) and is promoted to
// L2 when a summary is written; deleting the summary reverts it.
const (
	TierRaw        = "L3"
	TierSummarized = "L2"
)

// Session is one normalized conversational unit from any transcript source.
type Session struct {
	ID               string `json:"id"`
	Source           string `json:"source"`
	ProjectPath      string `json:"project_path"`
	ProjectName      string `json:"project_name"`
	CWD              string `json:"cwd"`
	Model            string `json:"model"`
	GitBranch        string `json:"git_branch"`
	FirstMessageAt   int64  `json:"first_message_at"`
	LastMessageAt    int64  `json:"last_message_at"`
	MessageCount     int    `json:"message_count"`
	UserMessageCount int    `json:"user_message_count"`
	TotalTokens      int    `json:"total_tokens"`
	CompactionCount  int    `json:"compaction_count"`
	ToolsUsed        string `json:"tools_used"` // JSON array of tool names
	Tier             string `json:"tier"`
	RawPath          string `json:"raw_path"`
	IngestedAt       int64  `json:"ingested_at"`
	Title            string `json:"title"`
}

// Duration returns the session length in seconds.
func (s *Session) Duration() int64 {
	return s.LastMessageAt - s.FirstMessageAt
}

// Message is one normalized message within a session.
type Message struct {
	ID          int64  `json:"id"`
	SessionID   string `json:"session_id"`
	Ordinal     int    `json:"ordinal"`
	Role        string `json:"role"`         // user | assistant | system | tool
	ContentType string `json:"content_type"` // text | tool_call | tool_result | thinking
	ContentText string `json:"content_text"`
	ContentJSON string `json:"content_json"`
	ToolName    string `json:"tool_name"`
	TokenCount  int    `json:"token_count"`
	CreatedAt   int64  `json:"created_at"`
}

// MarshalTools encodes a tool-name list the way sessions store it.
func MarshalTools(tools []string) string {
	if len(tools) == 0 {
		return "[]"
	}
	seen := make(map[string]bool, len(tools))
	uniq := make([]string, 0, len(tools))
	for _, t := range tools {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		uniq = append(uniq, t)
	}
	data, err := json.Marshal(uniq)
	if err != nil {
		return "[]"
	}
	return string(data)
}
