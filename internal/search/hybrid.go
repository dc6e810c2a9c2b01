// ABOUTME: Hybrid search ranking over the full-text index
// ABOUTME: Blends bm25 relevance with recency and session importance
package search

import (
	"math"
	"sort"
	"time"

	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/storage"
)

// Score weights. FTS relevance dominates; recency and importance split the
// rest evenly.
const (
	weightFTS        = 0.5
	weightRecency    = 0.25
	weightImportance = 0.25

	// recencyHalfLifeDays is the age at which the recency component halves
	recencyHalfLifeDays = 30

	// candidateFactor is how many FTS hits are fetched per requested result
	// so reranking has something to work with
	candidateFactor = 5
)

// Result is one ranked search hit with its score components
type Result struct {
	Session    models.Session `json:"session"`
	Snippet    string         `json:"snippet"`
	Score      float64        `json:"score"`
	FTS        float64        `json:"fts"`
	Recency    float64        `json:"recency"`
	Importance float64        `json:"importance"`
}

// Searcher ranks full-text hits
type Searcher struct {
	store   *storage.Store
	nowFunc func() time.Time
}

// NewSearcher creates a searcher over the store
func NewSearcher(store *storage.Store) *Searcher {
	return &Searcher{store: store, nowFunc: time.Now}
}

// SetNowFunc overrides the clock (tests)
func (s *Searcher) SetNowFunc(f func() time.Time) { s.nowFunc = f }

// Search runs the query and returns up to limit results, best first. Equal
// scores tie-break to the newer session.
func (s *Searcher) Search(query, projectPath string, after int64, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	hits, err := s.store.Search.SearchFTS(query, projectPath, after, limit*candidateFactor)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	// bm25 is negative for relevant rows; normalize by the strongest match
	// in this candidate set
	maxAbs := 0.0
	for i := range hits {
		if abs := math.Abs(hits[i].Rank); abs > maxAbs {
			maxAbs = abs
		}
	}

	now := s.nowFunc()
	results := make([]Result, 0, len(hits))
	for i := range hits {
		ftsNorm := 0.0
		if maxAbs > 0 {
			ftsNorm = math.Abs(hits[i].Rank) / maxAbs
		}
		recency := Recency(hits[i].Session.LastMessageAt, now)
		importance := Importance(&hits[i].Session)
		results = append(results, Result{
			Session:    hits[i].Session,
			Snippet:    hits[i].Snippet,
			Score:      weightFTS*ftsNorm + weightRecency*recency + weightImportance*importance,
			FTS:        ftsNorm,
			Recency:    recency,
			Importance: importance,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Session.LastMessageAt > results[j].Session.LastMessageAt
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Recency decays exponentially with session age, halving every 30 days
func Recency(lastMessageAt int64, now time.Time) float64 {
	ageDays := now.Sub(time.Unix(lastMessageAt, 0)).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp2(-ageDays / recencyHalfLifeDays)
}

// Importance scores a session by its size and depth, each component capped
// at its saturation point
func Importance(s *models.Session) float64 {
	return 0.3*capped(float64(s.MessageCount)/100) +
		0.3*capped(float64(s.UserMessageCount)/20) +
		0.2*capped(float64(s.TotalTokens)/200000) +
		0.2*capped(float64(s.CompactionCount)/5)
}

func capped(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
