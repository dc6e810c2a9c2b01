// ABOUTME: Project knowledge storage operations for SQLite
// ABOUTME: Read paths hide entries below the confidence floor; storage keeps them
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/harper/lifelong-memory/internal/models"
)

// KnowledgeStore handles tier-1 knowledge persistence
type KnowledgeStore struct {
	db *DB
}

// NewKnowledgeStore creates a new KnowledgeStore
func NewKnowledgeStore(db *DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

// Insert adds a new knowledge entry
func (k *KnowledgeStore) Insert(entry *models.KnowledgeEntry) error {
	_, err := k.db.Exec(`
		INSERT INTO project_knowledge (id, project_path, knowledge_type, content,
			confidence, evidence_count, source_sessions, first_seen_at, last_confirmed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.ProjectPath, entry.KnowledgeType, entry.Content,
		entry.Confidence, entry.EvidenceCount, entry.SourceSessions,
		entry.FirstSeenAt, entry.LastConfirmedAt)
	if err != nil {
		return fmt.Errorf("failed to insert knowledge entry: %w", err)
	}
	return nil
}

// Confirm records a repeated observation of an existing entry: bumps the
// evidence count, keeps the higher confidence, and refreshes provenance.
func (k *KnowledgeStore) Confirm(id string, confidence float64, sourceSessions string, now int64) error {
	result, err := k.db.Exec(`
		UPDATE project_knowledge
		SET evidence_count = evidence_count + 1,
			confidence = MAX(confidence, ?),
			source_sessions = ?,
			last_confirmed_at = ?
		WHERE id = ?
	`, confidence, sourceSessions, now, id)
	if err != nil {
		return fmt.Errorf("failed to confirm knowledge entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("knowledge entry %s not found", id)
	}
	return nil
}

// ListVisible returns entries for a project at or above the confidence floor,
// strongest evidence first.
func (k *KnowledgeStore) ListVisible(projectPath string, limit int) ([]models.KnowledgeEntry, error) {
	query := selectKnowledge + ` WHERE project_path = ? AND confidence >= ?
		ORDER BY confidence DESC, evidence_count DESC, last_confirmed_at DESC`
	args := []interface{}{projectPath, models.ConfidenceFloor}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := k.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanKnowledge(rows)
}

// ListAll returns every entry for a project including low-confidence ones.
// Consolidation matches candidates against the full set so near-duplicates
// merge instead of accumulating.
func (k *KnowledgeStore) ListAll(projectPath string) ([]models.KnowledgeEntry, error) {
	rows, err := k.db.Query(selectKnowledge+` WHERE project_path = ?
		ORDER BY first_seen_at ASC`, projectPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanKnowledge(rows)
}

// GetByID retrieves an entry by ID, or nil when absent
func (k *KnowledgeStore) GetByID(id string) (*models.KnowledgeEntry, error) {
	row := k.db.QueryRow(selectKnowledge+" WHERE id = ?", id)
	entry, err := scanKnowledgeRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

const selectKnowledge = `
	SELECT id, project_path, knowledge_type, content, confidence,
		evidence_count, source_sessions, first_seen_at, last_confirmed_at
	FROM project_knowledge`

func scanKnowledgeRow(row rowScanner) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	err := row.Scan(&entry.ID, &entry.ProjectPath, &entry.KnowledgeType,
		&entry.Content, &entry.Confidence, &entry.EvidenceCount,
		&entry.SourceSessions, &entry.FirstSeenAt, &entry.LastConfirmedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func scanKnowledge(rows *sql.Rows) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}
