// ABOUTME: Session summarization via the enrichment router
// ABOUTME: Formats the transcript, prompts for structured JSON, stores the summary
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harper/lifelong-memory/internal/llm"
	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/storage"
	"github.com/harper/lifelong-memory/internal/util"
)

const summarizePrompt = `You are analyzing a CLI coding session transcript. Generate a structured summary.

The session used %s via %s in project "%s" (cwd: %s).

Here are the messages (user/assistant conversation):

%s

---

Respond with a JSON object (no markdown, just raw JSON):
{
  "summary_text": "A 200-500 word summary of what happened in this session. Include the problem being solved, approaches tried, and final outcome.",
  "key_decisions": ["decision 1", "decision 2", ...],
  "files_touched": ["/path/to/file1.py", ...],
  "commands_run": ["notable command 1", ...],
  "outcome": "completed | partial | error"
}`

const (
	// maxSummaryMessages caps how much of the transcript goes into the prompt
	maxSummaryMessages = 200
	// minConversationChars is the floor under which a transcript is too thin
	// to summarize usefully
	minConversationChars = 100
)

// Summarizer generates and stores tier-2 summaries
type Summarizer struct {
	store   *storage.Store
	router  *llm.Router
	timeout time.Duration
	nowFunc func() int64
}

// NewSummarizer creates a summarizer over the store and router
func NewSummarizer(store *storage.Store, router *llm.Router) *Summarizer {
	return &Summarizer{store: store, router: router}
}

// SetTimeout bounds each backend call; zero means no bound
func (s *Summarizer) SetTimeout(d time.Duration) { s.timeout = d }

// SetNowFunc overrides the summary timestamp source (tests)
func (s *Summarizer) SetNowFunc(f func() int64) { s.nowFunc = f }

// Summarize generates, parses, and stores a summary for one session.
// Writing the summary promotes the session to L2.
func (s *Summarizer) Summarize(ctx context.Context, session *models.Session, override string) (*models.Summary, error) {
	messages, err := s.store.Messages.GetForSession(session.ID)
	if err != nil {
		return nil, err
	}

	conversation := FormatConversation(messages, maxSummaryMessages)
	if len(conversation) < minConversationChars {
		return nil, fmt.Errorf("session %s: transcript too thin to summarize", session.ID)
	}

	model := session.Model
	if model == "" {
		model = "unknown"
	}
	project := session.ProjectName
	if project == "" {
		project = "unknown"
	}
	prompt := fmt.Sprintf(summarizePrompt, model, session.Source, project, session.CWD, conversation)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	text, backend, err := s.router.Enrich(ctx, session.Source, override, prompt)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}

	var payload models.SummaryPayload
	if err := llm.DecodeJSON(text, &payload); err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}
	if strings.TrimSpace(payload.SummaryText) == "" {
		return nil, fmt.Errorf("session %s: backend returned an empty summary", session.ID)
	}

	summary := payload.ToSummary(session.ID, backend, s.now())
	if err := s.store.Summaries.Upsert(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Summarizer) now() int64 {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now().Unix()
}

// FormatConversation renders messages into the prompt's conversation block.
// Thinking blocks are skipped and long content is truncated; past
// maxMessages a single elision line stands in for the rest.
func FormatConversation(messages []models.Message, maxMessages int) string {
	var lines []string
	count := 0
	for i := range messages {
		msg := &messages[i]
		if count >= maxMessages {
			lines = append(lines, fmt.Sprintf("... (%d more messages)", len(messages)-count))
			break
		}
		text := strings.TrimSpace(msg.ContentText)
		if text == "" || msg.ContentType == "thinking" {
			continue
		}

		switch msg.ContentType {
		case "tool_call":
			tool := msg.ToolName
			if tool == "" {
				tool = "unknown"
			}
			lines = append(lines, fmt.Sprintf("[%s -> %s]: %s", msg.Role, tool, util.Truncate(text, 300)))
		case "tool_result":
			lines = append(lines, fmt.Sprintf("[tool result]: %s", util.Truncate(text, 200)))
		default:
			lines = append(lines, fmt.Sprintf("[%s]: %s", msg.Role, util.Truncate(text, 500)))
		}
		count++
	}
	return strings.Join(lines, "\n")
}
