// ABOUTME: Session storage operations for SQLite
// ABOUTME: Upsert, lookup, listing, and enrichment eligibility queries
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/harper/lifelong-memory/internal/models"
)

// SessionStore handles tier-3 session persistence
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Upsert inserts or replaces a session row. Messages are handled separately
// so the two can share one transaction via UpsertTx.
func (s *SessionStore) Upsert(session *models.Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.UpsertTx(tx, session); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpsertTx inserts or replaces a session row inside an existing transaction.
func (s *SessionStore) UpsertTx(tx *sql.Tx, session *models.Session) error {
	_, err := tx.Exec(`
		INSERT INTO sessions (id, source, project_path, project_name, cwd, model,
			git_branch, first_message_at, last_message_at, message_count,
			user_message_count, total_tokens, compaction_count, tools_used,
			tier, raw_path, ingested_at, title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			project_path = excluded.project_path,
			project_name = excluded.project_name,
			cwd = excluded.cwd,
			model = excluded.model,
			git_branch = excluded.git_branch,
			first_message_at = excluded.first_message_at,
			last_message_at = excluded.last_message_at,
			message_count = excluded.message_count,
			user_message_count = excluded.user_message_count,
			total_tokens = excluded.total_tokens,
			compaction_count = excluded.compaction_count,
			tools_used = excluded.tools_used,
			raw_path = excluded.raw_path,
			ingested_at = excluded.ingested_at,
			title = excluded.title
	`, session.ID, session.Source, session.ProjectPath, session.ProjectName,
		session.CWD, session.Model, session.GitBranch, session.FirstMessageAt,
		session.LastMessageAt, session.MessageCount, session.UserMessageCount,
		session.TotalTokens, session.CompactionCount, session.ToolsUsed,
		session.Tier, session.RawPath, session.IngestedAt, session.Title)
	return err
}

// GetByID retrieves a session by its ID, or nil when absent
func (s *SessionStore) GetByID(id string) (*models.Session, error) {
	row := s.db.QueryRow(selectSession+" WHERE id = ?", id)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Exists reports whether a session row is present
func (s *SessionStore) Exists(id string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sessions WHERE id = ?", id).Scan(&n)
	return n > 0, err
}

// List returns sessions newest-first, optionally filtered by source and project
func (s *SessionStore) List(source, projectPath string, limit int) ([]models.Session, error) {
	query := selectSession + " WHERE 1=1"
	var args []interface{}
	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	if projectPath != "" {
		query += " AND project_path = ?"
		args = append(args, projectPath)
	}
	query += " ORDER BY last_message_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanSessions(rows)
}

// Unsummarized returns L3 sessions with no summary, oldest-first, so a
// bounded enrichment pass drains the backlog in ingestion order.
func (s *SessionStore) Unsummarized(limit int) ([]models.Session, error) {
	query := selectSession + `
		WHERE tier = 'L3'
		  AND id NOT IN (SELECT session_id FROM session_summaries)
		ORDER BY last_message_at ASC, id ASC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanSessions(rows)
}

// ActiveProjects returns project paths with at least minSummaries summarized
// sessions and activity since the given epoch timestamp.
func (s *SessionStore) ActiveProjects(minSummaries int, since int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT s.project_path
		FROM sessions s
		JOIN session_summaries sm ON sm.session_id = s.id
		WHERE s.project_path != ''
		GROUP BY s.project_path
		HAVING COUNT(*) >= ? AND MAX(s.last_message_at) >= ?
		ORDER BY s.project_path
	`, minSummaries, since)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var projects []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// FirstUserMessages returns the text of the first n user messages of a
// session, in ordinal order. Used by the quality re-check at enrichment time.
func (s *SessionStore) FirstUserMessages(sessionID string, n int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT COALESCE(content_text, '')
		FROM messages
		WHERE session_id = ? AND role = 'user'
		ORDER BY ordinal ASC
		LIMIT ?
	`, sessionID, n)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

const selectSession = `
	SELECT id, source, project_path, project_name, cwd, model, git_branch,
		first_message_at, last_message_at, message_count, user_message_count,
		total_tokens, compaction_count, tools_used, tier, raw_path,
		ingested_at, title
	FROM sessions`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		session                                     models.Session
		projectPath, projectName, cwd               sql.NullString
		model, gitBranch, toolsUsed, rawPath, title sql.NullString
	)
	err := row.Scan(&session.ID, &session.Source, &projectPath, &projectName,
		&cwd, &model, &gitBranch, &session.FirstMessageAt, &session.LastMessageAt,
		&session.MessageCount, &session.UserMessageCount, &session.TotalTokens,
		&session.CompactionCount, &toolsUsed, &session.Tier, &rawPath,
		&session.IngestedAt, &title)
	if err != nil {
		return nil, err
	}
	session.ProjectPath = projectPath.String
	session.ProjectName = projectName.String
	session.CWD = cwd.String
	session.Model = model.String
	session.GitBranch = gitBranch.String
	session.ToolsUsed = toolsUsed.String
	session.RawPath = rawPath.String
	session.Title = title.String
	if session.ToolsUsed == "" {
		session.ToolsUsed = "[]"
	}
	return &session, nil
}

func scanSessions(rows *sql.Rows) ([]models.Session, error) {
	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}
