// ABOUTME: Tier-1 project knowledge model with confidence and evidence tracking
// ABOUTME: Entries below the confidence floor stay stored but are hidden from reads
package models

import "encoding/json"

// Knowledge type labels.
const (
	KnowledgePattern      = "pattern"
	KnowledgePreference   = "preference"
	KnowledgeArchitecture = "architecture"
	KnowledgeGotcha       = "gotcha"
	KnowledgeWorkflow     = "workflow"
)

// ConfidenceFloor is the threshold below which entries are excluded from
// every read path. Low-confidence entries remain in storage so a later
// confirmation can raise them back into view.
const ConfidenceFloor = 0.5

// KnowledgeEntry is one distilled, durable fact about a project.
type KnowledgeEntry struct {
	ID              string  `json:"id"`
	ProjectPath     string  `json:"project_path"`
	KnowledgeType   string  `json:"knowledge_type"`
	Content         string  `json:"content"`
	Confidence      float64 `json:"confidence"`
	EvidenceCount   int     `json:"evidence_count"`
	SourceSessions  string  `json:"source_sessions"` // JSON array of session IDs
	FirstSeenAt     int64   `json:"first_seen_at"`
	LastConfirmedAt int64   `json:"last_confirmed_at"`
}

// KnowledgeCandidate is the JSON shape enrichment backends return, one
// element per proposed entry.
type KnowledgeCandidate struct {
	KnowledgeType string  `json:"knowledge_type"`
	Content       string  `json:"content"`
	Confidence    float64 `json:"confidence"`
}

// ValidType reports whether the candidate carries a known knowledge type.
func (c *KnowledgeCandidate) ValidType() bool {
	switch c.KnowledgeType {
	case KnowledgePattern, KnowledgePreference, KnowledgeArchitecture,
		KnowledgeGotcha, KnowledgeWorkflow:
		return true
	}
	return false
}

// AppendSource adds a session ID to the entry's provenance list,
// deduplicating against what is already there.
func (e *KnowledgeEntry) AppendSource(sessionID string) {
	var sources []string
	if e.SourceSessions != "" {
		_ = json.Unmarshal([]byte(e.SourceSessions), &sources)
	}
	for _, s := range sources {
		if s == sessionID {
			return
		}
	}
	sources = append(sources, sessionID)
	data, err := json.Marshal(sources)
	if err != nil {
		return
	}
	e.SourceSessions = string(data)
}
