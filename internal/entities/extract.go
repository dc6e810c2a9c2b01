// ABOUTME: Regex-based entity extraction from session message text
// ABOUTME: File paths, functions, error types, packages, commands with ignore lists
package entities

import (
	"regexp"
	"strings"

	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/storage"
)

const contextRadius = 50

var patterns = map[string]*regexp.Regexp{
	models.EntityFilePath:  regexp.MustCompile(`(?m)(?:^|[\s"` + "`" + `'(])(/[\w./\-]+\.\w{1,10})`),
	models.EntityFunction:  regexp.MustCompile(`(?m)(?:fn |def |function |class |async def )\s*(\w+)`),
	models.EntityErrorType: regexp.MustCompile(`(?m)((?:Error|Exception|Panic|FAIL|TypeError|ValueError|KeyError|RuntimeError|ImportError|ModuleNotFoundError|FileNotFoundError|PermissionError|SyntaxError|AttributeError|NameError|IndexError|OSError)[\w:]*)`),
	models.EntityPackage:   regexp.MustCompile(`(?m)(?:import |from |require\(['"]|use )(\w[\w./\-]*)`),
	models.EntityCommand:   regexp.MustCompile(`(?m)(?:^\$ |^> )\s*(\w[\w\-]+ [^\n]{0,80})`),
}

// Too generic or noisy to be worth indexing
var ignoreValues = map[string]map[string]bool{
	models.EntityFilePath: {"/dev/null": true, "/tmp": true, "/usr": true, "/bin": true, "/etc": true},
	models.EntityFunction: {"self": true, "cls": true, "main": true, "test": true,
		"init": true, "new": true, "get": true, "set": true},
	models.EntityPackage: {"os": true, "sys": true, "re": true, "json": true,
		"time": true, "typing": true, "io": true},
}

// Extracted is one entity match with a context snippet around it
type Extracted struct {
	EntityType string
	Value      string
	Context    string
}

// Extract finds entities in a text using the pattern table, deduplicating
// by (type, value) within the text.
func Extract(text string) []Extracted {
	var results []Extracted
	seen := make(map[[2]string]bool)

	for entityType, pattern := range patterns {
		ignore := ignoreValues[entityType]
		for _, match := range pattern.FindAllStringSubmatchIndex(text, -1) {
			// Group 1 bounds
			start, end := match[2], match[3]
			if start < 0 {
				continue
			}
			value := strings.TrimSpace(text[start:end])
			if len(value) < 2 || ignore[value] {
				continue
			}
			key := [2]string{entityType, value}
			if seen[key] {
				continue
			}
			seen[key] = true

			ctxStart := start - contextRadius
			if ctxStart < 0 {
				ctxStart = 0
			}
			ctxEnd := end + contextRadius
			if ctxEnd > len(text) {
				ctxEnd = len(text)
			}
			context := strings.TrimSpace(strings.ReplaceAll(text[ctxStart:ctxEnd], "\n", " "))

			results = append(results, Extracted{
				EntityType: entityType,
				Value:      value,
				Context:    context,
			})
		}
	}
	return results
}

// ExtractForSession extracts entities from every user and assistant message
// of a session and stores them. Earlier occurrences for the session are
// cleared first so re-ingest does not double-count. Returns the number of
// occurrences recorded.
func ExtractForSession(store *storage.Store, sessionID string) (int, error) {
	session, err := store.Sessions.GetByID(sessionID)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, nil
	}

	messages, err := store.Messages.GetForSession(sessionID)
	if err != nil {
		return 0, err
	}

	if err := store.Entities.ClearForSession(sessionID); err != nil {
		return 0, err
	}

	count := 0
	for i := range messages {
		msg := &messages[i]
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		if msg.ContentText == "" {
			continue
		}

		for _, ent := range Extract(msg.ContentText) {
			occ := &models.EntityOccurrence{
				SessionID: sessionID,
				MessageID: msg.ID,
				Context:   ent.Context,
			}
			if _, err := store.Entities.Record(ent.EntityType, ent.Value, occ, msg.CreatedAt); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
