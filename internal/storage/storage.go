// ABOUTME: Storage aggregate wiring all per-concern stores over one database
// ABOUTME: Single construction point used by commands, pipeline, and MCP server
package storage

import (
	"github.com/harper/lifelong-memory/internal/storage/sqlite"
)

// Store bundles the per-concern stores over one SQLite database
type Store struct {
	DB        *sqlite.DB
	Sessions  *sqlite.SessionStore
	Messages  *sqlite.MessageStore
	Summaries *sqlite.SummaryStore
	Knowledge *sqlite.KnowledgeStore
	Entities  *sqlite.EntityStore
	Search    *sqlite.SearchStore
	Stats     *sqlite.StatsStore
}

// Open opens the database at path and wires all stores
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	return wrap(db), nil
}

// OpenInMemory opens an in-memory database for testing
func OpenInMemory() (*Store, error) {
	db, err := sqlite.OpenInMemory()
	if err != nil {
		return nil, err
	}
	return wrap(db), nil
}

func wrap(db *sqlite.DB) *Store {
	return &Store{
		DB:        db,
		Sessions:  sqlite.NewSessionStore(db),
		Messages:  sqlite.NewMessageStore(db),
		Summaries: sqlite.NewSummaryStore(db),
		Knowledge: sqlite.NewKnowledgeStore(db),
		Entities:  sqlite.NewEntityStore(db),
		Search:    sqlite.NewSearchStore(db),
		Stats:     sqlite.NewStatsStore(db),
	}
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.DB.Close()
}
