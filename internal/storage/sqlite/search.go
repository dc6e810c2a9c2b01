// ABOUTME: Full-text search and timeline queries over the message index
// ABOUTME: Query tokens are quoted so FTS5 operators are always literals
package sqlite

import (
	"strings"

	"github.com/harper/lifelong-memory/internal/models"
)

// SearchStore handles read-only search queries
type SearchStore struct {
	db *DB
}

// NewSearchStore creates a new SearchStore
func NewSearchStore(db *DB) *SearchStore {
	return &SearchStore{db: db}
}

// FTSHit is one session-level full-text match. Rank is the best (lowest)
// bm25 value among the session's matching messages; lower is better.
type FTSHit struct {
	Session models.Session
	Snippet string
	Rank    float64
}

// SearchFTS runs a full-text query over message content and returns the best
// hit per session. Optional project and after filters narrow the candidates.
func (s *SearchStore) SearchFTS(query, projectPath string, after int64, limit int) ([]FTSHit, error) {
	match := EscapeFTS(query)
	if match == "" {
		return nil, nil
	}

	// bm25/snippet must be computed where the FTS cursor is directly
	// MATCHed; MATERIALIZED stops the planner from flattening them back
	// into the aggregate context, which SQLite rejects at runtime.
	sql := `
		WITH f AS MATERIALIZED (
			SELECT rowid AS mid,
				bm25(messages_fts) AS rank,
				snippet(messages_fts, 0, '', '', '...', 24) AS snip
			FROM messages_fts
			WHERE messages_fts MATCH ?
		)
		SELECT ` + sessionColumns + `,
			f.snip,
			MIN(f.rank) AS rank
		FROM f
		JOIN messages m ON m.id = f.mid
		JOIN sessions s ON s.id = m.session_id
		WHERE 1=1`
	args := []interface{}{match}
	if projectPath != "" {
		sql += " AND s.project_path = ?"
		args = append(args, projectPath)
	}
	if after > 0 {
		sql += " AND s.last_message_at >= ?"
		args = append(args, after)
	}
	sql += `
		GROUP BY s.id
		ORDER BY rank ASC
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(sql, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var hits []FTSHit
	for rows.Next() {
		var hit FTSHit
		dest := sessionScanDest(&hit.Session)
		dest = append(dest, &hit.Snippet, &hit.Rank)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if hit.Session.ToolsUsed == "" {
			hit.Session.ToolsUsed = "[]"
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// Timeline returns sessions in reverse chronological order with their
// summary text when one exists.
func (s *SearchStore) Timeline(projectPath string, after, before int64, limit int) ([]TimelineEntry, error) {
	sql := `
		SELECT ` + sessionColumns + `,
			COALESCE(sm.summary_text, ''), COALESCE(sm.outcome, '')
		FROM sessions s
		LEFT JOIN session_summaries sm ON sm.session_id = s.id
		WHERE 1=1`
	var args []interface{}
	if projectPath != "" {
		sql += " AND s.project_path = ?"
		args = append(args, projectPath)
	}
	if after > 0 {
		sql += " AND s.last_message_at >= ?"
		args = append(args, after)
	}
	if before > 0 {
		sql += " AND s.last_message_at <= ?"
		args = append(args, before)
	}
	sql += " ORDER BY s.last_message_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(sql, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []TimelineEntry
	for rows.Next() {
		var entry TimelineEntry
		dest := sessionScanDest(&entry.Session)
		dest = append(dest, &entry.SummaryText, &entry.Outcome)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if entry.Session.ToolsUsed == "" {
			entry.Session.ToolsUsed = "[]"
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// TimelineEntry pairs a session with its summary when one exists
type TimelineEntry struct {
	Session     models.Session
	SummaryText string
	Outcome     string
}

// EscapeFTS quotes every query token so FTS5 treats hyphens, colons, and
// other operator characters as literal text.
func EscapeFTS(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, `""`)
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " ")
}

const sessionColumns = `s.id, s.source, s.project_path, s.project_name, s.cwd,
	s.model, s.git_branch, s.first_message_at, s.last_message_at,
	s.message_count, s.user_message_count, s.total_tokens, s.compaction_count,
	s.tools_used, s.tier, s.raw_path, s.ingested_at, s.title`

// sessionScanDest builds the scan destinations matching sessionColumns.
// Nullable text columns scan through COALESCE-free pointers because the
// ingestor always writes non-null strings; empty string is the zero value.
func sessionScanDest(session *models.Session) []interface{} {
	return []interface{}{
		&session.ID, &session.Source, &session.ProjectPath, &session.ProjectName,
		&session.CWD, &session.Model, &session.GitBranch, &session.FirstMessageAt,
		&session.LastMessageAt, &session.MessageCount, &session.UserMessageCount,
		&session.TotalTokens, &session.CompactionCount, &session.ToolsUsed,
		&session.Tier, &session.RawPath, &session.IngestedAt, &session.Title,
	}
}
