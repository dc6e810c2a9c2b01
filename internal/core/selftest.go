// ABOUTME: Post-run sanity checks over the store
// ABOUTME: Cheap queries that catch schema drift or index corruption early
package core

import (
	"fmt"

	"github.com/harper/lifelong-memory/internal/storage"
)

// SelfTest verifies the store is queryable and its totals are coherent
func SelfTest(store *storage.Store) error {
	stats, err := store.Stats.Collect()
	if err != nil {
		return fmt.Errorf("stats query failed: %w", err)
	}

	if stats.TotalSummaries > stats.TotalSessions {
		return fmt.Errorf("more summaries (%d) than sessions (%d)",
			stats.TotalSummaries, stats.TotalSessions)
	}
	if stats.TotalSessions > 0 && stats.TotalMessages == 0 {
		return fmt.Errorf("%d sessions stored but no messages", stats.TotalSessions)
	}

	if _, err := store.Search.SearchFTS("selftest", "", 0, 1); err != nil {
		return fmt.Errorf("full-text index query failed: %w", err)
	}

	return nil
}
