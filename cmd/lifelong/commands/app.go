// ABOUTME: Shared wiring for CLI commands
// ABOUTME: Builds the store, enrichment router, scheduler, gate, and pipeline from config
package commands

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/harper/lifelong-memory/internal/config"
	"github.com/harper/lifelong-memory/internal/core"
	"github.com/harper/lifelong-memory/internal/ingest"
	"github.com/harper/lifelong-memory/internal/llm"
	"github.com/harper/lifelong-memory/internal/parsers"
	"github.com/harper/lifelong-memory/internal/search"
	"github.com/harper/lifelong-memory/internal/storage"
)

// app bundles the wired components a command needs
type app struct {
	cfg       *config.Config
	store     *storage.Store
	router    *llm.Router
	quality   ingest.Quality
	ingestor  *ingest.Ingestor
	scheduler *core.Scheduler
	gate      *core.Gate
	pipeline  *core.Pipeline
	searcher  *search.Searcher
}

// newApp loads config and wires the full component graph. Callers must
// Close() when done.
func newApp() (*app, error) {
	// Load .env if present (for OPENAI_API_KEY and overrides)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	router := llm.NewRouter(
		llm.NewClaudeBackend(""),
		llm.NewCodexBackend(""),
		llm.NewGeminiBackend(""),
		llm.NewOpenAIBackend(cfg.OpenAIKey, cfg.OpenAIModel, cfg.MaxRetries, cfg.RetryDelay),
	)

	quality := ingest.DefaultQuality()
	quality.MinUserMessages = cfg.QualityMinUser
	quality.MinMessages = cfg.QualityMinMsgs
	quality.MinDurationSecs = cfg.QualityMinSecs

	ingestor := ingest.NewIngestor(store, parsers.Registry(cfg.SourcePaths()), quality)
	ingestor.SetVerbose(verbose)

	scheduler := core.NewScheduler(store, router, core.Options{
		SummarizeWidth: cfg.SummarizePool,
		PromoteWidth:   cfg.PromotePool,
		ActivityDays:   cfg.ActivityDays,
		Quality:        quality,
	})
	scheduler.SetVerbose(verbose)
	scheduler.Summarizer().SetTimeout(cfg.EnrichTimeout)
	scheduler.Promoter().SetTimeout(cfg.EnrichTimeout)

	gate := core.NewGate(core.NewFileMarkerStore(cfg.MarkerPath), cfg.Cooldown)

	pipeline := core.NewPipeline(store, ingestor, scheduler, gate)
	pipeline.SetVerbose(verbose)

	return &app{
		cfg:       cfg,
		store:     store,
		router:    router,
		quality:   quality,
		ingestor:  ingestor,
		scheduler: scheduler,
		gate:      gate,
		pipeline:  pipeline,
		searcher:  search.NewSearcher(store),
	}, nil
}

// backendOverride resolves the effective backend pin: the command flag wins,
// otherwise the configured default
func (a *app) backendOverride(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.BackendPin
}

// Close releases the app's resources
func (a *app) Close() error {
	return a.store.Close()
}
