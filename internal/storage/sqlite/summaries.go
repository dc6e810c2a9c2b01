// ABOUTME: Summary storage operations for SQLite
// ABOUTME: Writing a summary promotes its session to L2; deleting reverts to L3
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/harper/lifelong-memory/internal/models"
)

// SummaryStore handles tier-2 summary persistence
type SummaryStore struct {
	db *DB
}

// NewSummaryStore creates a new SummaryStore
func NewSummaryStore(db *DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// Upsert writes a summary and promotes the session to L2 in one transaction
func (s *SummaryStore) Upsert(summary *models.Summary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO session_summaries (session_id, summary_text, key_decisions,
			files_touched, commands_run, outcome, generated_at, generator_backend)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			summary_text = excluded.summary_text,
			key_decisions = excluded.key_decisions,
			files_touched = excluded.files_touched,
			commands_run = excluded.commands_run,
			outcome = excluded.outcome,
			generated_at = excluded.generated_at,
			generator_backend = excluded.generator_backend
	`, summary.SessionID, summary.SummaryText, summary.KeyDecisions,
		summary.FilesTouched, summary.CommandsRun, summary.Outcome,
		summary.GeneratedAt, summary.GeneratorBackend)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to upsert summary: %w", err)
	}

	if _, err := tx.Exec("UPDATE sessions SET tier = ? WHERE id = ?",
		models.TierSummarized, summary.SessionID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to promote session tier: %w", err)
	}

	return tx.Commit()
}

// Get retrieves a summary by session ID, or nil when absent
func (s *SummaryStore) Get(sessionID string) (*models.Summary, error) {
	var (
		summary models.Summary
		backend sql.NullString
	)
	err := s.db.QueryRow(`
		SELECT session_id, summary_text, key_decisions, files_touched,
			commands_run, outcome, generated_at, generator_backend
		FROM session_summaries
		WHERE session_id = ?
	`, sessionID).Scan(&summary.SessionID, &summary.SummaryText,
		&summary.KeyDecisions, &summary.FilesTouched, &summary.CommandsRun,
		&summary.Outcome, &summary.GeneratedAt, &backend)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	summary.GeneratorBackend = backend.String
	return &summary, nil
}

// Delete removes a summary and reverts the session to L3 in one transaction.
// Used when an updated transcript invalidates the stored summary.
func (s *SummaryStore) Delete(sessionID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM session_summaries WHERE session_id = ?", sessionID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete summary: %w", err)
	}

	if _, err := tx.Exec("UPDATE sessions SET tier = ? WHERE id = ?",
		models.TierRaw, sessionID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to revert session tier: %w", err)
	}

	return tx.Commit()
}

// RecentForProject returns the newest summaries for a project, paired with
// the session title and end time, newest-first.
func (s *SummaryStore) RecentForProject(projectPath string, limit int) ([]models.Summary, error) {
	rows, err := s.db.Query(`
		SELECT sm.session_id, sm.summary_text, sm.key_decisions, sm.files_touched,
			sm.commands_run, sm.outcome, sm.generated_at, sm.generator_backend
		FROM session_summaries sm
		JOIN sessions s ON s.id = sm.session_id
		WHERE s.project_path = ?
		ORDER BY s.last_message_at DESC
		LIMIT ?
	`, projectPath, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var summaries []models.Summary
	for rows.Next() {
		var (
			summary models.Summary
			backend sql.NullString
		)
		err := rows.Scan(&summary.SessionID, &summary.SummaryText,
			&summary.KeyDecisions, &summary.FilesTouched, &summary.CommandsRun,
			&summary.Outcome, &summary.GeneratedAt, &backend)
		if err != nil {
			return nil, err
		}
		summary.GeneratorBackend = backend.String
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
