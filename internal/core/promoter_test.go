// ABOUTME: Tests for knowledge promotion and fuzzy merging
// ABOUTME: Jaccard boundaries, confirm-vs-insert, within-run merging
package core

import (
	"context"
	"testing"

	"github.com/harper/lifelong-memory/internal/llm"
	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/storage"
)

func TestWordSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "uses pytest for testing", "uses pytest for testing", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"case and punctuation ignored", "Uses Pytest!", "uses pytest", 1.0},
		{"half overlap", "a b c d", "c d e f", 1.0 / 3.0},
		{"empty side", "", "something", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WordSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("WordSimilarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func seedSummarized(t *testing.T, store *storage.Store, project string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := string(rune('a'+i)) + "-session"
		seedSession(t, store, id, project, 1700000000+int64(i*3600))
		err := store.Summaries.Upsert(&models.Summary{
			SessionID:   id,
			SummaryText: "Fixed retry handling in the sync worker using jittered backoff.",
			KeyDecisions: `["add jitter"]`, FilesTouched: "[]", CommandsRun: "[]",
			Outcome: models.OutcomeCompleted, GeneratedAt: 1700000000, GeneratorBackend: "codex",
		})
		if err != nil {
			t.Fatalf("summary Upsert() failed: %v", err)
		}
	}
}

func TestPromoter_InsertsNewKnowledge(t *testing.T) {
	store := testStore(t)
	seedSummarized(t, store, "/home/u/Code/apas", 2)

	backend := &stubBackend{name: "codex", reply: `[
		{"knowledge_type": "pattern", "content": "external calls always use jittered backoff", "confidence": 0.8},
		{"knowledge_type": "gotcha", "content": "the staging API rate limits at 10 rps", "confidence": 0.6}
	]`}
	promoter := NewPromoter(store, llm.NewRouter(backend))
	promoter.SetNowFunc(func() int64 { return 1700005000 })

	report, err := promoter.PromoteProject(context.Background(), "/home/u/Code/apas", "")
	if err != nil {
		t.Fatalf("PromoteProject() failed: %v", err)
	}
	if report.Entries != 2 || report.New != 2 || report.Confirmed != 0 {
		t.Errorf("report = %+v, want 2 entries, 2 new", report)
	}

	entries, err := store.Knowledge.ListVisible("/home/u/Code/apas", 10)
	if err != nil {
		t.Fatalf("ListVisible() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("stored %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.EvidenceCount != 1 {
			t.Errorf("EvidenceCount = %d, want 1", e.EvidenceCount)
		}
		if e.SourceSessions == "[]" || e.SourceSessions == "" {
			t.Error("provenance is empty")
		}
	}
}

func TestPromoter_ConfirmsSimilarEntry(t *testing.T) {
	store := testStore(t)
	seedSummarized(t, store, "/home/u/Code/apas", 2)

	existing := &models.KnowledgeEntry{
		ID: "k-1", ProjectPath: "/home/u/Code/apas", KnowledgeType: models.KnowledgePattern,
		Content: "external calls always use jittered backoff", Confidence: 0.6,
		EvidenceCount: 1, SourceSessions: `["old-session"]`,
		FirstSeenAt: 1600000000, LastConfirmedAt: 1600000000,
	}
	if err := store.Knowledge.Insert(existing); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	// Same content modulo case and punctuation: similarity 1.0
	backend := &stubBackend{name: "codex", reply: `[
		{"knowledge_type": "pattern", "content": "External calls always use jittered backoff.", "confidence": 0.9}
	]`}
	promoter := NewPromoter(store, llm.NewRouter(backend))
	promoter.SetNowFunc(func() int64 { return 1700005000 })

	report, err := promoter.PromoteProject(context.Background(), "/home/u/Code/apas", "")
	if err != nil {
		t.Fatalf("PromoteProject() failed: %v", err)
	}
	if report.Confirmed != 1 || report.New != 0 {
		t.Errorf("report = %+v, want 1 confirmed, 0 new", report)
	}

	got, err := store.Knowledge.GetByID("k-1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.EvidenceCount != 2 {
		t.Errorf("EvidenceCount = %d, want 2", got.EvidenceCount)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %f, want raised to 0.9", got.Confidence)
	}
	if got.LastConfirmedAt != 1700005000 {
		t.Errorf("LastConfirmedAt = %d, want the injected clock", got.LastConfirmedAt)
	}
}

func TestPromoter_MergeBoundary(t *testing.T) {
	store := testStore(t)
	seedSummarized(t, store, "/home/u/Code/apas", 2)

	// Ten distinct words; candidates share seven (similarity exactly 0.7,
	// merges) and six (0.6, inserts)
	existingContent := "deploy scripts must always target staging before any production rollout"
	atThreshold := "deploy scripts must always target staging rollout"
	belowThreshold := "deploy scripts must always target staging"

	if got := WordSimilarity(existingContent, atThreshold); got < 0.7-1e-9 || got > 0.7+1e-9 {
		t.Fatalf("fixture similarity = %f, want 0.7", got)
	}
	if got := WordSimilarity(existingContent, belowThreshold); got < 0.6-1e-9 || got > 0.6+1e-9 {
		t.Fatalf("fixture similarity = %f, want 0.6", got)
	}

	existing := &models.KnowledgeEntry{
		ID: "k-1", ProjectPath: "/home/u/Code/apas", KnowledgeType: models.KnowledgeWorkflow,
		Content: existingContent, Confidence: 0.6,
		EvidenceCount: 1, SourceSessions: "[]",
		FirstSeenAt: 1600000000, LastConfirmedAt: 1600000000,
	}
	if err := store.Knowledge.Insert(existing); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	backend := &stubBackend{name: "codex", reply: `[
		{"knowledge_type": "workflow", "content": "` + atThreshold + `", "confidence": 0.8},
		{"knowledge_type": "workflow", "content": "` + belowThreshold + `", "confidence": 0.7}
	]`}
	promoter := NewPromoter(store, llm.NewRouter(backend))
	promoter.SetNowFunc(func() int64 { return 1700005000 })

	report, err := promoter.PromoteProject(context.Background(), "/home/u/Code/apas", "")
	if err != nil {
		t.Fatalf("PromoteProject() failed: %v", err)
	}
	if report.Confirmed != 1 || report.New != 1 {
		t.Errorf("report = %+v, want the 0.7 candidate confirmed and the 0.6 candidate inserted", report)
	}

	got, err := store.Knowledge.GetByID("k-1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.EvidenceCount != 2 {
		t.Errorf("EvidenceCount = %d, want 2 after the boundary confirm", got.EvidenceCount)
	}

	entries, _ := store.Knowledge.ListVisible("/home/u/Code/apas", 10)
	if len(entries) != 2 {
		t.Errorf("stored %d entries, want the original plus one new row", len(entries))
	}
}

func TestPromoter_ConfidenceNeverLowered(t *testing.T) {
	store := testStore(t)
	seedSummarized(t, store, "/home/u/Code/apas", 2)

	existing := &models.KnowledgeEntry{
		ID: "k-1", ProjectPath: "/home/u/Code/apas", KnowledgeType: models.KnowledgePattern,
		Content: "external calls always use jittered backoff", Confidence: 0.95,
		EvidenceCount: 3, SourceSessions: "[]",
		FirstSeenAt: 1600000000, LastConfirmedAt: 1600000000,
	}
	if err := store.Knowledge.Insert(existing); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	backend := &stubBackend{name: "codex", reply: `[
		{"knowledge_type": "pattern", "content": "external calls always use jittered backoff", "confidence": 0.5}
	]`}
	promoter := NewPromoter(store, llm.NewRouter(backend))

	if _, err := promoter.PromoteProject(context.Background(), "/home/u/Code/apas", ""); err != nil {
		t.Fatalf("PromoteProject() failed: %v", err)
	}

	got, _ := store.Knowledge.GetByID("k-1")
	if got.Confidence != 0.95 {
		t.Errorf("Confidence = %f, want 0.95 kept", got.Confidence)
	}
	if got.EvidenceCount != 4 {
		t.Errorf("EvidenceCount = %d, want 4", got.EvidenceCount)
	}
}

func TestPromoter_WithinRunMerge(t *testing.T) {
	store := testStore(t)
	seedSummarized(t, store, "/home/u/Code/apas", 2)

	// Two near-identical candidates in one reply: the second confirms the first
	backend := &stubBackend{name: "codex", reply: `[
		{"knowledge_type": "preference", "content": "the team prefers table driven tests everywhere", "confidence": 0.7},
		{"knowledge_type": "preference", "content": "The team prefers table driven tests, everywhere!", "confidence": 0.8}
	]`}
	promoter := NewPromoter(store, llm.NewRouter(backend))

	report, err := promoter.PromoteProject(context.Background(), "/home/u/Code/apas", "")
	if err != nil {
		t.Fatalf("PromoteProject() failed: %v", err)
	}
	if report.New != 1 || report.Confirmed != 1 {
		t.Errorf("report = %+v, want 1 new + 1 confirmed", report)
	}

	entries, _ := store.Knowledge.ListVisible("/home/u/Code/apas", 10)
	if len(entries) != 1 {
		t.Fatalf("stored %d entries, want 1 merged entry", len(entries))
	}
	if entries[0].EvidenceCount != 2 || entries[0].Confidence != 0.8 {
		t.Errorf("merged entry = %+v, want evidence 2, confidence 0.8", entries[0])
	}
}

func TestPromoter_SkipsLowConfidenceCandidates(t *testing.T) {
	store := testStore(t)
	seedSummarized(t, store, "/home/u/Code/apas", 2)

	backend := &stubBackend{name: "codex", reply: `[
		{"knowledge_type": "pattern", "content": "maybe something about caching", "confidence": 0.3}
	]`}
	promoter := NewPromoter(store, llm.NewRouter(backend))

	report, err := promoter.PromoteProject(context.Background(), "/home/u/Code/apas", "")
	if err != nil {
		t.Fatalf("PromoteProject() failed: %v", err)
	}
	if report.Entries != 0 || report.New != 0 {
		t.Errorf("report = %+v, want the weak candidate dropped", report)
	}
}

func TestPromoter_TooFewSummaries(t *testing.T) {
	store := testStore(t)
	seedSummarized(t, store, "/home/u/Code/apas", 1)

	backend := &stubBackend{name: "codex", reply: "[]"}
	promoter := NewPromoter(store, llm.NewRouter(backend))

	report, err := promoter.PromoteProject(context.Background(), "/home/u/Code/apas", "")
	if err != nil {
		t.Fatalf("PromoteProject() failed: %v", err)
	}
	if report.Entries != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
	if backend.callCount() != 0 {
		t.Errorf("backend called %d times with one summary, want 0", backend.callCount())
	}
}

func TestPromoter_InvalidTypeDefaultsToPattern(t *testing.T) {
	store := testStore(t)
	seedSummarized(t, store, "/home/u/Code/apas", 2)

	backend := &stubBackend{name: "codex", reply: `[
		{"knowledge_type": "revelation", "content": "deploys happen from ci only never from laptops", "confidence": 0.7}
	]`}
	promoter := NewPromoter(store, llm.NewRouter(backend))

	if _, err := promoter.PromoteProject(context.Background(), "/home/u/Code/apas", ""); err != nil {
		t.Fatalf("PromoteProject() failed: %v", err)
	}

	entries, _ := store.Knowledge.ListVisible("/home/u/Code/apas", 10)
	if len(entries) != 1 || entries[0].KnowledgeType != models.KnowledgePattern {
		t.Errorf("entries = %+v, want one pattern entry", entries)
	}
}
