// ABOUTME: Entity storage operations for SQLite
// ABOUTME: Deduplicates by (type, value) and records per-session occurrences
package sqlite

import (
	"fmt"

	"github.com/harper/lifelong-memory/internal/models"
)

// EntityStore handles entity persistence
type EntityStore struct {
	db *DB
}

// NewEntityStore creates a new EntityStore
func NewEntityStore(db *DB) *EntityStore {
	return &EntityStore{db: db}
}

// Record upserts an entity and appends an occurrence in one transaction.
// Returns the entity row ID.
func (e *EntityStore) Record(entityType, value string, occ *models.EntityOccurrence, now int64) (int64, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO entities (entity_type, value, first_seen, last_seen, seen_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(entity_type, value) DO UPDATE SET
			last_seen = excluded.last_seen,
			seen_count = seen_count + 1
	`, entityType, value, now, now)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to upsert entity: %w", err)
	}

	var entityID int64
	err = tx.QueryRow("SELECT id FROM entities WHERE entity_type = ? AND value = ?",
		entityType, value).Scan(&entityID)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to resolve entity id: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO entity_occurrences (entity_id, session_id, message_id, context)
		VALUES (?, ?, ?, ?)
	`, entityID, occ.SessionID, occ.MessageID, occ.Context)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert occurrence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return entityID, nil
}

// ClearForSession drops occurrences of a session so re-ingest does not
// double-count. Entity rows themselves are kept.
func (e *EntityStore) ClearForSession(sessionID string) error {
	_, err := e.db.Exec("DELETE FROM entity_occurrences WHERE session_id = ?", sessionID)
	return err
}

// TopForSession returns entities seen in a session with occurrence counts
func (e *EntityStore) TopForSession(sessionID string, limit int) ([]models.Entity, error) {
	rows, err := e.db.Query(`
		SELECT e.id, e.entity_type, e.value, e.first_seen, e.last_seen, e.seen_count
		FROM entities e
		JOIN entity_occurrences o ON o.entity_id = e.id
		WHERE o.session_id = ?
		GROUP BY e.id
		ORDER BY COUNT(*) DESC, e.seen_count DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entities []models.Entity
	for rows.Next() {
		var ent models.Entity
		err := rows.Scan(&ent.ID, &ent.EntityType, &ent.Value,
			&ent.FirstSeen, &ent.LastSeen, &ent.SeenCount)
		if err != nil {
			return nil, err
		}
		entities = append(entities, ent)
	}
	return entities, rows.Err()
}
