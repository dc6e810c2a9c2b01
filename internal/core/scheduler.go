// ABOUTME: Bounded-concurrency dispatch of summarization and promotion work
// ABOUTME: Separate fixed-width pools; per-item failures never abort siblings
package core

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/harper/lifelong-memory/internal/ingest"
	"github.com/harper/lifelong-memory/internal/llm"
	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/storage"
)

// Default pool widths and the project activity window
const (
	DefaultSummarizeWidth = 8
	DefaultPromoteWidth   = 4
	DefaultActivityDays   = 30
	// minProjectSummaries is how many summarized sessions a project needs
	// before consolidation considers it
	minProjectSummaries = 2
	// qualityProbeMessages is how many early user messages the eligibility
	// re-check reads per session
	qualityProbeMessages = 10
)

// Options tunes the scheduler; zero values take the defaults
type Options struct {
	SummarizeWidth int
	PromoteWidth   int
	ActivityDays   int
	Quality        ingest.Quality
}

// Scheduler runs the enrichment and consolidation stages
type Scheduler struct {
	store         *storage.Store
	router        *llm.Router
	summarizer    *Summarizer
	promoter      *Promoter
	summarizePool *Pool
	promotePool   *Pool
	activityDays  int
	quality       ingest.Quality
	verbose       bool
	nowFunc       func() time.Time
}

// NewScheduler creates a scheduler with its own summarize and promote pools
func NewScheduler(store *storage.Store, router *llm.Router, opts Options) *Scheduler {
	if opts.SummarizeWidth <= 0 {
		opts.SummarizeWidth = DefaultSummarizeWidth
	}
	if opts.PromoteWidth <= 0 {
		opts.PromoteWidth = DefaultPromoteWidth
	}
	if opts.ActivityDays <= 0 {
		opts.ActivityDays = DefaultActivityDays
	}
	if opts.Quality == (ingest.Quality{}) {
		opts.Quality = ingest.DefaultQuality()
	}
	return &Scheduler{
		store:         store,
		router:        router,
		summarizer:    NewSummarizer(store, router),
		promoter:      NewPromoter(store, router),
		summarizePool: NewPool(opts.SummarizeWidth),
		promotePool:   NewPool(opts.PromoteWidth),
		activityDays:  opts.ActivityDays,
		quality:       opts.Quality,
		nowFunc:       time.Now,
	}
}

// SetVerbose enables per-item logging to stderr
func (s *Scheduler) SetVerbose(v bool) { s.verbose = v }

// SetNowFunc overrides the clock (tests)
func (s *Scheduler) SetNowFunc(f func() time.Time) { s.nowFunc = f }

// Summarizer returns the scheduler's summarizer
func (s *Scheduler) Summarizer() *Summarizer { return s.summarizer }

// Promoter returns the scheduler's promoter
func (s *Scheduler) Promoter() *Promoter { return s.promoter }

// RunEnrichment summarizes unsummarized, quality-passing sessions,
// oldest-first. limit bounds dispatch only; zero means no bound. Failed
// sessions stay L3 and are retried on the next pass.
func (s *Scheduler) RunEnrichment(ctx context.Context, limit int, override string) (*models.EnrichReport, error) {
	report := &models.EnrichReport{}

	sessions, err := s.store.Sessions.Unsummarized(0)
	if err != nil {
		return nil, err
	}

	var eligible []models.Session
	for i := range sessions {
		texts, err := s.store.Sessions.FirstUserMessages(sessions[i].ID, qualityProbeMessages)
		if err != nil {
			return nil, err
		}
		if !s.quality.Check(&sessions[i], texts) {
			continue
		}
		eligible = append(eligible, sessions[i])
	}
	if limit > 0 && len(eligible) > limit {
		eligible = eligible[:limit]
	}
	report.Attempted = len(eligible)
	if len(eligible) == 0 {
		return report, nil
	}

	tasks := make([]func() error, len(eligible))
	for i := range eligible {
		session := eligible[i]
		tasks[i] = func() error {
			if _, err := s.summarizer.Summarize(ctx, &session, override); err != nil {
				if s.verbose {
					log.Printf("summarize failed: %v", err)
				}
				return err
			}
			return nil
		}
	}

	report.Succeeded, report.Failed = s.summarizePool.Run(tasks)
	return report, nil
}

// RunConsolidation promotes knowledge for eligible projects: at least two
// summarized sessions and activity within the window. A non-empty project
// bypasses eligibility and forces that one project.
func (s *Scheduler) RunConsolidation(ctx context.Context, project, override string) (*models.PromoteReport, error) {
	report := &models.PromoteReport{}

	var projects []string
	if project != "" {
		projects = []string{project}
	} else {
		since := s.nowFunc().AddDate(0, 0, -s.activityDays).Unix()
		var err error
		projects, err = s.store.Sessions.ActiveProjects(minProjectSummaries, since)
		if err != nil {
			return nil, err
		}
	}
	report.Projects = len(projects)
	if len(projects) == 0 {
		return report, nil
	}

	var mu sync.Mutex
	tasks := make([]func() error, len(projects))
	for i := range projects {
		projectPath := projects[i]
		tasks[i] = func() error {
			sub, err := s.promoter.PromoteProject(ctx, projectPath, override)
			if err != nil {
				if s.verbose {
					log.Printf("promote failed for %s: %v", projectPath, err)
				}
				return err
			}
			mu.Lock()
			report.Entries += sub.Entries
			report.Confirmed += sub.Confirmed
			report.New += sub.New
			mu.Unlock()
			return nil
		}
	}

	s.promotePool.Run(tasks)
	return report, nil
}
