// ABOUTME: Message storage operations for SQLite
// ABOUTME: Transactional replace keeps messages consistent with their session row
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/harper/lifelong-memory/internal/models"
)

// MessageStore handles message persistence
type MessageStore struct {
	db *DB
}

// NewMessageStore creates a new MessageStore
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db}
}

// ReplaceForSession atomically replaces all messages of a session together
// with the session row itself. An updated transcript always supersedes the
// stored one wholesale; partial merges are never attempted.
func (m *MessageStore) ReplaceForSession(session *models.Session, messages []models.Message, sessions *SessionStore) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := sessions.UpsertTx(tx, session); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", session.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear old messages: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (session_id, ordinal, role, content_type,
			content_text, content_json, tool_name, token_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range messages {
		msg := &messages[i]
		_, err := stmt.Exec(session.ID, msg.Ordinal, msg.Role, msg.ContentType,
			nullString(msg.ContentText), nullString(msg.ContentJSON),
			nullString(msg.ToolName), msg.TokenCount, msg.CreatedAt)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert message %d: %w", msg.Ordinal, err)
		}
	}

	return tx.Commit()
}

// GetForSession returns all messages of a session in ordinal order
func (m *MessageStore) GetForSession(sessionID string) ([]models.Message, error) {
	rows, err := m.db.Query(`
		SELECT id, session_id, ordinal, role, content_type, content_text,
			content_json, tool_name, token_count, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY ordinal ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var messages []models.Message
	for rows.Next() {
		var (
			msg                            models.Message
			contentText, contentJSON, tool sql.NullString
		)
		err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Ordinal, &msg.Role,
			&msg.ContentType, &contentText, &contentJSON, &tool,
			&msg.TokenCount, &msg.CreatedAt)
		if err != nil {
			return nil, err
		}
		msg.ContentText = contentText.String
		msg.ContentJSON = contentJSON.String
		msg.ToolName = tool.String
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// nullString converts an empty string to sql.NullString
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
