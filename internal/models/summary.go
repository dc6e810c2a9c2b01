// ABOUTME: Tier-2 session summary model produced by enrichment backends
// ABOUTME: One summary per session; writing one promotes the session to L2
package models

import "encoding/json"

// Outcome values a summary may carry.
const (
	OutcomeCompleted = "completed"
	OutcomePartial   = "partial"
	OutcomeError     = "error"
)

// Summary is the structured distillation of one session.
type Summary struct {
	SessionID        string `json:"session_id"`
	SummaryText      string `json:"summary_text"`
	KeyDecisions     string `json:"key_decisions"` // JSON array
	FilesTouched     string `json:"files_touched"` // JSON array
	CommandsRun      string `json:"commands_run"`  // JSON array
	Outcome          string `json:"outcome"`
	GeneratedAt      int64  `json:"generated_at"`
	GeneratorBackend string `json:"generator_backend"`
}

// SummaryPayload is the JSON shape enrichment backends return.
type SummaryPayload struct {
	SummaryText  string   `json:"summary_text"`
	KeyDecisions []string `json:"key_decisions"`
	FilesTouched []string `json:"files_touched"`
	CommandsRun  []string `json:"commands_run"`
	Outcome      string   `json:"outcome"`
}

// ToSummary converts a backend payload into the stored form.
func (p *SummaryPayload) ToSummary(sessionID, backend string, generatedAt int64) *Summary {
	outcome := p.Outcome
	switch outcome {
	case OutcomeCompleted, OutcomePartial, OutcomeError:
	default:
		outcome = OutcomePartial
	}
	return &Summary{
		SessionID:        sessionID,
		SummaryText:      p.SummaryText,
		KeyDecisions:     marshalList(p.KeyDecisions),
		FilesTouched:     marshalList(p.FilesTouched),
		CommandsRun:      marshalList(p.CommandsRun),
		Outcome:          outcome,
		GeneratedAt:      generatedAt,
		GeneratorBackend: backend,
	}
}

func marshalList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}
