// ABOUTME: Tier-1 knowledge promotion by consolidating session summaries
// ABOUTME: Fuzzy-merges backend candidates against existing entries per project
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harper/lifelong-memory/internal/llm"
	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/storage"
)

const promotePrompt = `You are analyzing multiple coding session summaries for the same project.
Extract stable patterns, preferences, architectural decisions, and gotchas.

Project: %s

Session summaries:
%s

Existing knowledge entries (if any):
%s

---

Return a JSON array of knowledge entries. Each entry should be a pattern that appears across
multiple sessions (not one-off observations). Types: pattern, preference, architecture, gotcha, workflow.

[
  {
    "knowledge_type": "pattern | preference | architecture | gotcha | workflow",
    "content": "Concise description of the knowledge entry",
    "confidence": 0.5
  },
  ...
]

Only include entries with confidence >= 0.5. Return empty array [] if nothing is stable enough.`

// mergeThreshold is the Jaccard similarity at or above which a candidate
// confirms an existing entry instead of inserting a new one
const mergeThreshold = 0.7

// maxProvenanceSessions caps how many session IDs a new entry records
const maxProvenanceSessions = 10

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// wordSet normalizes text to lowercase words with punctuation stripped
func wordSet(text string) map[string]bool {
	stripped := nonWordRe.ReplaceAllString(strings.ToLower(text), "")
	words := make(map[string]bool)
	for _, w := range strings.Fields(stripped) {
		words[w] = true
	}
	return words
}

// WordSimilarity is the word-level Jaccard similarity between two strings
func WordSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}

// Promoter consolidates session summaries into project knowledge
type Promoter struct {
	store   *storage.Store
	router  *llm.Router
	timeout time.Duration
	nowFunc func() int64
}

// NewPromoter creates a promoter over the store and router
func NewPromoter(store *storage.Store, router *llm.Router) *Promoter {
	return &Promoter{store: store, router: router}
}

// SetTimeout bounds each backend call; zero means no bound
func (p *Promoter) SetTimeout(d time.Duration) { p.timeout = d }

// SetNowFunc overrides the timestamp source (tests)
func (p *Promoter) SetNowFunc(f func() int64) { p.nowFunc = f }

// PromoteProject runs one consolidation pass for a project. Fewer than two
// summarized sessions yields an empty report, not an error.
func (p *Promoter) PromoteProject(ctx context.Context, projectPath, override string) (*models.PromoteReport, error) {
	report := &models.PromoteReport{}

	sessions, err := p.store.Sessions.List("", projectPath, 100)
	if err != nil {
		return nil, err
	}

	var blocks []string
	var sessionIDs []string
	sourceCounts := make(map[string]int)
	for i := range sessions {
		summary, err := p.store.Summaries.Get(sessions[i].ID)
		if err != nil {
			return nil, err
		}
		if summary == nil {
			continue
		}
		title := sessions[i].Title
		if title == "" {
			title = "untitled"
		}
		blocks = append(blocks, fmt.Sprintf("Session %s (%s):\n%s\nDecisions: %s\n",
			sessions[i].ID, title, summary.SummaryText, summary.KeyDecisions))
		sessionIDs = append(sessionIDs, sessions[i].ID)
		sourceCounts[sessions[i].Source]++
	}
	if len(blocks) < 2 {
		return report, nil
	}

	existing, err := p.store.Knowledge.ListAll(projectPath)
	if err != nil {
		return nil, err
	}
	existingText := "None yet."
	if len(existing) > 0 {
		var lines []string
		for i := range existing {
			lines = append(lines, fmt.Sprintf("- [%s] %s (confidence: %.2f)",
				existing[i].KnowledgeType, existing[i].Content, existing[i].Confidence))
		}
		existingText = strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(promotePrompt, projectPath, strings.Join(blocks, "\n---\n"), existingText)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	text, _, err := p.router.Enrich(ctx, dominantSource(sourceCounts), override, prompt)
	if err != nil {
		return nil, err
	}

	var candidates []models.KnowledgeCandidate
	if err := llm.DecodeJSON(text, &candidates); err != nil {
		return nil, fmt.Errorf("project %s: %w", projectPath, err)
	}

	now := p.now()
	provenance := sessionIDs
	if len(provenance) > maxProvenanceSessions {
		provenance = provenance[:maxProvenanceSessions]
	}

	for i := range candidates {
		candidate := &candidates[i]
		if strings.TrimSpace(candidate.Content) == "" || candidate.Confidence < models.ConfidenceFloor {
			continue
		}
		if !candidate.ValidType() {
			candidate.KnowledgeType = models.KnowledgePattern
		}
		report.Entries++

		// Entries created or confirmed earlier in this run are in the slice
		// too, so within-run duplicates also merge
		if matched := bestMatch(existing, candidate.Content); matched != nil {
			for _, id := range provenance {
				matched.AppendSource(id)
			}
			if err := p.store.Knowledge.Confirm(matched.ID, candidate.Confidence, matched.SourceSessions, now); err != nil {
				return nil, err
			}
			matched.EvidenceCount++
			if candidate.Confidence > matched.Confidence {
				matched.Confidence = candidate.Confidence
			}
			report.Confirmed++
			continue
		}

		entry := models.KnowledgeEntry{
			ID:              uuid.NewString(),
			ProjectPath:     projectPath,
			KnowledgeType:   candidate.KnowledgeType,
			Content:         candidate.Content,
			Confidence:      candidate.Confidence,
			EvidenceCount:   1,
			SourceSessions:  marshalSessionIDs(provenance),
			FirstSeenAt:     now,
			LastConfirmedAt: now,
		}
		if err := p.store.Knowledge.Insert(&entry); err != nil {
			return nil, err
		}
		existing = append(existing, entry)
		report.New++
	}

	return report, nil
}

// bestMatch returns the most similar existing entry at or above the merge
// threshold, or nil
func bestMatch(entries []models.KnowledgeEntry, content string) *models.KnowledgeEntry {
	var best *models.KnowledgeEntry
	bestScore := 0.0
	for i := range entries {
		score := WordSimilarity(content, entries[i].Content)
		if score >= mergeThreshold && score > bestScore {
			best = &entries[i]
			bestScore = score
		}
	}
	return best
}

func dominantSource(counts map[string]int) string {
	source := ""
	max := 0
	for s, n := range counts {
		if n > max || (n == max && s < source) {
			source = s
			max = n
		}
	}
	return source
}

func marshalSessionIDs(ids []string) string {
	data, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func (p *Promoter) now() int64 {
	if p.nowFunc != nil {
		return p.nowFunc()
	}
	return time.Now().Unix()
}
