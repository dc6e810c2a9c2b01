// ABOUTME: The gated full pipeline: ingest, summarize, promote
// ABOUTME: Marker writes happen only after the run completes
package core

import (
	"context"
	"log"
	"time"

	"github.com/harper/lifelong-memory/internal/ingest"
	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/storage"
)

// Pipeline ties the stages together behind the gate
type Pipeline struct {
	store     *storage.Store
	ingestor  *ingest.Ingestor
	scheduler *Scheduler
	gate      *Gate
	selfTest  func(*storage.Store) error
	verbose   bool
}

// NewPipeline creates a pipeline over already-constructed stages
func NewPipeline(store *storage.Store, ingestor *ingest.Ingestor, scheduler *Scheduler, gate *Gate) *Pipeline {
	return &Pipeline{
		store:     store,
		ingestor:  ingestor,
		scheduler: scheduler,
		gate:      gate,
		selfTest:  SelfTest,
	}
}

// SetVerbose enables stage logging to stderr
func (p *Pipeline) SetVerbose(v bool) { p.verbose = v }

// Ingest runs the ingestion stage alone. It is cheap and never gated.
func (p *Pipeline) Ingest() (*models.IngestReport, error) {
	return p.ingestor.Run()
}

// Run executes a full pass if the gate (or force) allows. When the gate is
// closed, or the marker cannot be read, only ingestion runs; the returned
// decision says why. limit bounds summarization dispatch, override pins an
// enrichment backend.
func (p *Pipeline) Run(ctx context.Context, force bool, limit int, override string) (*models.PipelineReport, models.Decision, error) {
	start := time.Now()
	report := &models.PipelineReport{}

	decision, err := p.gate.Check()
	if err != nil {
		// Eligibility is unknowable; do the cheap, idempotent part only
		decision = models.Decision{Reason: "gate unavailable: " + err.Error()}
		if p.verbose {
			log.Printf("gate check failed, running ingestion only: %v", err)
		}
	}
	if force {
		decision.MayRun = true
		decision.Reason = "forced"
	}

	ingestReport, err := p.ingestor.Run()
	if err != nil {
		return nil, decision, err
	}
	report.Ingest = *ingestReport

	if !decision.MayRun {
		report.Duration = time.Since(start).Seconds()
		return report, decision, nil
	}

	enrichReport, err := p.scheduler.RunEnrichment(ctx, limit, override)
	if err != nil {
		return nil, decision, err
	}
	report.Enrich = *enrichReport

	promoteReport, err := p.scheduler.RunConsolidation(ctx, "", override)
	if err != nil {
		return nil, decision, err
	}
	report.Promote = *promoteReport
	report.Daily = decision.Daily

	// The self-test belongs to the heavier daily variant only
	if decision.Daily {
		if err := p.selfTest(p.store); err != nil {
			// The run's writes are already committed; surface the check,
			// keep the report
			log.Printf("post-run self-test failed: %v", err)
		}
	}

	if err := p.gate.MarkRun(); err != nil {
		return report, decision, err
	}
	if decision.Daily {
		if err := p.gate.MarkDaily(); err != nil {
			return report, decision, err
		}
	}

	report.Duration = time.Since(start).Seconds()
	return report, decision, nil
}
