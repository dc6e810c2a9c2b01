// ABOUTME: Update detection and quality filtering for incoming sessions
// ABOUTME: Classifies each parsed transcript as insert, update, unchanged, or low quality
package ingest

import (
	"regexp"
	"strings"

	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/parsers"
)

// Status is the classifier's verdict for one incoming session
type Status int

const (
	// StatusInsert is a previously unseen, quality-passing session
	StatusInsert Status = iota
	// StatusUpdate is a known session whose transcript grew or changed
	StatusUpdate
	// StatusUnchanged is a known session identical to the stored record
	StatusUnchanged
	// StatusLowQuality is a new candidate rejected by the quality filter
	StatusLowQuality
)

// String returns the status label
func (s Status) String() string {
	switch s {
	case StatusInsert:
		return "insert"
	case StatusUpdate:
		return "update"
	case StatusUnchanged:
		return "unchanged"
	case StatusLowQuality:
		return "low_quality"
	}
	return "unknown"
}

// Titles matching these are automation artifacts, not human sessions
var automationTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/[\w/.-]+$`),            // pure file path
	regexp.MustCompile(`^\w+$`),                  // single word
	regexp.MustCompile(`(?i)^(y|n|yes|no|ok)$`),  // single-word reply
	regexp.MustCompile(`(?i)^You are:`),          // automated agent system prompts
	regexp.MustCompile(`^\[Request interrupted`), // interrupted before real content
}

// Quality holds the thresholds a session must clear to be worth enriching
type Quality struct {
	MinUserMessages int
	MinMessages     int
	MinDurationSecs int
	// MinRealMessages is how many early user messages must survive the
	// injected-context prefix check
	MinRealMessages int
}

// DefaultQuality returns the standard thresholds
func DefaultQuality() Quality {
	return Quality{
		MinUserMessages: 3,
		MinMessages:     5,
		MinDurationSecs: 60,
		MinRealMessages: 2,
	}
}

// Check applies the quality filter to a session's counters and title.
// userTexts are the session's user message texts in ordinal order, used for
// the injected-context check; IDE tooling inflates user_message_count with
// machine-generated messages.
func (q Quality) Check(session *models.Session, userTexts []string) bool {
	if session.UserMessageCount < q.MinUserMessages {
		return false
	}
	if session.MessageCount < q.MinMessages {
		return false
	}
	if session.Duration() < int64(q.MinDurationSecs) {
		return false
	}
	if IsAutomationTitle(session.Title) {
		return false
	}
	return q.hasRealUserMessages(userTexts)
}

func (q Quality) hasRealUserMessages(userTexts []string) bool {
	real := 0
	for _, text := range userTexts {
		text = strings.TrimSpace(text)
		if text == "" || parsers.IsInjectedContext(text) {
			continue
		}
		real++
		if real >= q.MinRealMessages {
			return true
		}
	}
	return false
}

// IsAutomationTitle reports whether a title looks machine-generated
func IsAutomationTitle(title string) bool {
	title = strings.TrimSpace(title)
	for _, pattern := range automationTitlePatterns {
		if pattern.MatchString(title) {
			return true
		}
	}
	return false
}

// Classify decides what to do with an incoming parsed session. Low quality
// only applies to new candidates: sessions already stored are classified by
// change alone and re-checked for quality at enrichment time.
func Classify(incoming *models.Session, userTexts []string, existing *models.Session, quality Quality) Status {
	if existing == nil {
		if !quality.Check(incoming, userTexts) {
			return StatusLowQuality
		}
		return StatusInsert
	}

	if incoming.MessageCount != existing.MessageCount ||
		incoming.UserMessageCount != existing.UserMessageCount ||
		incoming.LastMessageAt != existing.LastMessageAt {
		return StatusUpdate
	}

	return StatusUnchanged
}
