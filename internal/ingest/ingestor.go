// ABOUTME: Ingestion pass over all configured transcript sources
// ABOUTME: Parses, classifies, and stores sessions; updates invalidate summaries
package ingest

import (
	"log"
	"time"

	"github.com/harper/lifelong-memory/internal/entities"
	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/parsers"
	"github.com/harper/lifelong-memory/internal/storage"
)

// Ingestor runs ingestion passes against the store
type Ingestor struct {
	store   *storage.Store
	sources []parsers.SourceSpec
	quality Quality
	verbose bool
	nowFunc func() int64
}

// NewIngestor creates an Ingestor over the given sources
func NewIngestor(store *storage.Store, sources []parsers.SourceSpec, quality Quality) *Ingestor {
	return &Ingestor{
		store:   store,
		sources: sources,
		quality: quality,
	}
}

// SetVerbose enables per-file logging to stderr
func (ing *Ingestor) SetVerbose(v bool) { ing.verbose = v }

// SetNowFunc overrides the ingestion timestamp source (tests)
func (ing *Ingestor) SetNowFunc(f func() int64) { ing.nowFunc = f }

// Run performs one ingestion pass over every configured source. Parse
// failures and low-quality candidates are counted and skipped; they never
// abort the batch. Fast (no enrichment calls), safe to run before queries.
func (ing *Ingestor) Run() (*models.IngestReport, error) {
	report := &models.IngestReport{}

	for _, source := range ing.sources {
		files, err := source.Parser.Discover(source.Paths)
		if err != nil {
			if ing.verbose {
				log.Printf("discover failed for %s: %v", source.Tag, err)
			}
			continue
		}
		report.Discovered += len(files)

		for _, path := range files {
			if err := ing.ingestFile(source.Parser, path, report); err != nil {
				report.ParseErrors++
				report.Skipped++
				if ing.verbose {
					log.Printf("parse failed for %s: %v", path, err)
				}
			}
		}
	}

	return report, nil
}

func (ing *Ingestor) ingestFile(parser parsers.Parser, path string, report *models.IngestReport) error {
	parsed, err := parser.Parse(path)
	if err != nil {
		return err
	}
	if parsed == nil || parsed.Session.UserMessageCount == 0 {
		report.Skipped++
		return nil
	}

	session := parsed.Session
	session.IngestedAt = ing.now()

	existing, err := ing.store.Sessions.GetByID(session.ID)
	if err != nil {
		return err
	}

	status := Classify(session, userTexts(parsed.Messages), existing, ing.quality)
	switch status {
	case StatusUnchanged:
		report.Unchanged++
		return nil

	case StatusLowQuality:
		report.Skipped++
		if ing.verbose {
			log.Printf("skipping low-quality session %s (%s)", session.ID, session.Title)
		}
		return nil

	case StatusInsert:
		if err := ing.storeSession(parsed); err != nil {
			return err
		}
		report.Inserted++
		report.NewIDs = append(report.NewIDs, session.ID)

	case StatusUpdate:
		if err := ing.storeSession(parsed); err != nil {
			return err
		}
		// The stored summary no longer reflects the transcript. Dropping it
		// reverts the session to L3 so enrichment picks it up again.
		if err := ing.store.Summaries.Delete(session.ID); err != nil {
			return err
		}
		report.Updated++
		report.UpdatedIDs = append(report.UpdatedIDs, session.ID)
	}

	if _, err := entities.ExtractForSession(ing.store, session.ID); err != nil {
		if ing.verbose {
			log.Printf("entity extraction failed for %s: %v", session.ID, err)
		}
	}
	return nil
}

func (ing *Ingestor) storeSession(parsed *parsers.Parsed) error {
	return ing.store.Messages.ReplaceForSession(parsed.Session, parsed.Messages, ing.store.Sessions)
}

func (ing *Ingestor) now() int64 {
	if ing.nowFunc != nil {
		return ing.nowFunc()
	}
	return time.Now().Unix()
}

func userTexts(messages []models.Message) []string {
	var texts []string
	for i := range messages {
		if messages[i].Role == "user" && messages[i].ContentType == "text" {
			texts = append(texts, messages[i].ContentText)
		}
	}
	return texts
}
