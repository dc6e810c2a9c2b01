// ABOUTME: Cooldown and daily gating for the enrichment pipeline
// ABOUTME: Marker persistence is injected so tests never touch the filesystem
package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/lifelong-memory/internal/models"
)

// Marker records when the last gated pipeline run completed
type Marker struct {
	LastRun   int64  `json:"last_run"`             // epoch seconds
	LastDaily string `json:"last_daily,omitempty"` // YYYY-MM-DD
}

// MarkerStore persists the run marker
type MarkerStore interface {
	Load() (*Marker, error)
	Save(*Marker) error
}

// FileMarkerStore keeps the marker in a JSON file beside the database
type FileMarkerStore struct {
	path string
}

// NewFileMarkerStore creates a marker store at the given path
func NewFileMarkerStore(path string) *FileMarkerStore {
	return &FileMarkerStore{path: path}
}

// Load reads the marker. A missing file is a zero marker, not an error.
func (f *FileMarkerStore) Load() (*Marker, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return &Marker{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run marker: %w", err)
	}
	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("failed to parse run marker: %w", err)
	}
	return &marker, nil
}

// Save writes the marker, creating parent directories as needed
func (f *FileMarkerStore) Save(marker *Marker) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run marker: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run marker: %w", err)
	}
	return nil
}

// MemoryMarkerStore keeps the marker in memory, for tests
type MemoryMarkerStore struct {
	marker Marker
	// LoadErr and SaveErr, when set, are returned by the respective calls
	LoadErr error
	SaveErr error
}

func (m *MemoryMarkerStore) Load() (*Marker, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	copied := m.marker
	return &copied, nil
}

func (m *MemoryMarkerStore) Save(marker *Marker) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.marker = *marker
	return nil
}

// Gate decides whether a full pipeline run may proceed. It is advisory, not
// a lock: two processes racing the read-then-write window both run, and the
// downstream stages are idempotent.
type Gate struct {
	marker   MarkerStore
	cooldown time.Duration
	now      func() time.Time
}

// NewGate creates a gate over the given marker store
func NewGate(marker MarkerStore, cooldown time.Duration) *Gate {
	return &Gate{
		marker:   marker,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// SetNowFunc overrides the clock (tests)
func (g *Gate) SetNowFunc(f func() time.Time) { g.now = f }

// Check reads the marker and decides. A marker read failure is returned as
// an error: the caller cannot determine eligibility and should fall back to
// ingestion only.
func (g *Gate) Check() (models.Decision, error) {
	marker, err := g.marker.Load()
	if err != nil {
		return models.Decision{}, err
	}

	now := g.now()
	today := now.Format("2006-01-02")
	daily := marker.LastDaily != today

	if daily {
		return models.Decision{MayRun: true, Daily: true, Reason: "first run of the day"}, nil
	}

	elapsed := now.Sub(time.Unix(marker.LastRun, 0))
	if elapsed >= g.cooldown {
		return models.Decision{
			MayRun: true,
			Reason: fmt.Sprintf("cooldown elapsed (%s since last run)", elapsed.Round(time.Second)),
		}, nil
	}

	return models.Decision{
		Reason: fmt.Sprintf("cooldown active (%s remaining)", (g.cooldown - elapsed).Round(time.Second)),
	}, nil
}

// MarkRun records that a full run just completed
func (g *Gate) MarkRun() error {
	marker, err := g.marker.Load()
	if err != nil {
		return err
	}
	marker.LastRun = g.now().Unix()
	return g.marker.Save(marker)
}

// MarkDaily records that today's daily pass completed
func (g *Gate) MarkDaily() error {
	marker, err := g.marker.Load()
	if err != nil {
		return err
	}
	marker.LastDaily = g.now().Format("2006-01-02")
	return g.marker.Save(marker)
}
