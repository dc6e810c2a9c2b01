// ABOUTME: Entity models for regex-extracted artifacts from session messages
// ABOUTME: Entities are deduplicated by (type, value); occurrences carry context
package models

// Entity type labels.
const (
	EntityFilePath  = "file_path"
	EntityFunction  = "function"
	EntityErrorType = "error_type"
	EntityPackage   = "package"
	EntityCommand   = "command"
)

// Entity is one deduplicated artifact seen across sessions.
type Entity struct {
	ID         int64  `json:"id"`
	EntityType string `json:"entity_type"`
	Value      string `json:"value"`
	FirstSeen  int64  `json:"first_seen"`
	LastSeen   int64  `json:"last_seen"`
	SeenCount  int    `json:"seen_count"`
}

// EntityOccurrence ties an entity to the session and message it appeared in.
type EntityOccurrence struct {
	ID        int64  `json:"id"`
	EntityID  int64  `json:"entity_id"`
	SessionID string `json:"session_id"`
	MessageID int64  `json:"message_id"`
	Context   string `json:"context"`
}
