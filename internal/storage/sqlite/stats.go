// ABOUTME: Aggregate statistics queries for the memory store
// ABOUTME: Backs the stats command and the post-run self-test
package sqlite

// Stats summarizes the store contents
type Stats struct {
	TotalSessions  int            `json:"total_sessions"`
	TotalMessages  int            `json:"total_messages"`
	TotalSummaries int            `json:"total_summaries"`
	TotalKnowledge int            `json:"total_knowledge"`
	TotalEntities  int            `json:"total_entities"`
	BySource       map[string]int `json:"by_source"`
	ByTier         map[string]int `json:"by_tier"`
}

// StatsStore handles aggregate queries
type StatsStore struct {
	db *DB
}

// NewStatsStore creates a new StatsStore
func NewStatsStore(db *DB) *StatsStore {
	return &StatsStore{db: db}
}

// Collect gathers counts across all tables
func (s *StatsStore) Collect() (*Stats, error) {
	stats := &Stats{
		BySource: make(map[string]int),
		ByTier:   make(map[string]int),
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM sessions", &stats.TotalSessions},
		{"SELECT COUNT(*) FROM messages", &stats.TotalMessages},
		{"SELECT COUNT(*) FROM session_summaries", &stats.TotalSummaries},
		{"SELECT COUNT(*) FROM project_knowledge", &stats.TotalKnowledge},
		{"SELECT COUNT(*) FROM entities", &stats.TotalEntities},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.Query("SELECT source, COUNT(*) FROM sessions GROUP BY source")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		stats.BySource[source] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tierRows, err := s.db.Query("SELECT tier, COUNT(*) FROM sessions GROUP BY tier")
	if err != nil {
		return nil, err
	}
	defer func() { _ = tierRows.Close() }()
	for tierRows.Next() {
		var tier string
		var n int
		if err := tierRows.Scan(&tier, &n); err != nil {
			return nil, err
		}
		stats.ByTier[tier] = n
	}
	return stats, tierRows.Err()
}
