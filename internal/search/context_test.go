// ABOUTME: Tests for project context selection
// ABOUTME: Ordering, token budget cutoff, and the empty-project case
package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/harper/lifelong-memory/internal/models"
	"github.com/harper/lifelong-memory/internal/storage"
)

func seedKnowledge(t *testing.T, store *storage.Store, project string, n int, content func(int) string) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := store.Knowledge.Insert(&models.KnowledgeEntry{
			ID:          fmt.Sprintf("k-%d", i),
			ProjectPath: project, KnowledgeType: models.KnowledgePattern,
			Content: content(i), Confidence: 0.9 - float64(i)*0.01,
			EvidenceCount: 1, SourceSessions: "[]",
			FirstSeenAt: 1700000000, LastConfirmedAt: 1700000000,
		})
		if err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}
}

func TestProjectContext_Empty(t *testing.T) {
	store := testStore(t)
	got, err := ProjectContext(store, "/home/u/Code/apas", 2000)
	if err != nil {
		t.Fatalf("ProjectContext() failed: %v", err)
	}
	if got != "" {
		t.Errorf("ProjectContext() = %q, want empty for an unknown project", got)
	}
}

func TestProjectContext_KnowledgeAndSummaries(t *testing.T) {
	store := testStore(t)
	project := "/home/u/Code/apas"
	seedKnowledge(t, store, project, 2, func(i int) string {
		return fmt.Sprintf("entry number %d about the build system", i)
	})

	seedSearchable(t, store, "s1", "some searchable text about builds", 1700000000, 10, 3, 1000)
	err := store.Summaries.Upsert(&models.Summary{
		SessionID: "s1", SummaryText: "Moved the build to bazel and fixed caching.",
		KeyDecisions: "[]", FilesTouched: "[]", CommandsRun: "[]",
		Outcome: models.OutcomeCompleted, GeneratedAt: 1700000100, GeneratorBackend: "codex",
	})
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	got, err := ProjectContext(store, project, 2000)
	if err != nil {
		t.Fatalf("ProjectContext() failed: %v", err)
	}
	if !strings.Contains(got, "## Project Knowledge") {
		t.Errorf("knowledge header missing:\n%s", got)
	}
	if !strings.Contains(got, "**[pattern]** entry number 0") {
		t.Errorf("knowledge entry missing:\n%s", got)
	}
	if !strings.Contains(got, "## Recent Sessions") {
		t.Errorf("summaries header missing:\n%s", got)
	}
	if !strings.Contains(got, "Moved the build to bazel") {
		t.Errorf("summary line missing:\n%s", got)
	}
}

func TestProjectContext_BudgetCutsOff(t *testing.T) {
	store := testStore(t)
	project := "/home/u/Code/apas"
	long := strings.Repeat("a fairly verbose knowledge entry ", 10)
	seedKnowledge(t, store, project, 50, func(i int) string {
		return fmt.Sprintf("%s number %d", long, i)
	})

	tight, err := ProjectContext(store, project, 300)
	if err != nil {
		t.Fatalf("ProjectContext() failed: %v", err)
	}
	roomy, err := ProjectContext(store, project, 5000)
	if err != nil {
		t.Fatalf("ProjectContext() failed: %v", err)
	}

	if len(tight) >= len(roomy) {
		t.Errorf("tight budget output (%d chars) not smaller than roomy (%d chars)", len(tight), len(roomy))
	}
	// 300 tokens is roughly 1200 chars; allow formatting slack
	if len(tight) > 1600 {
		t.Errorf("tight output = %d chars, want bounded near the budget", len(tight))
	}
	if !strings.Contains(tight, "number 0") {
		t.Errorf("highest-confidence entry missing from tight output:\n%s", tight)
	}
}

func TestProjectContext_HidesLowConfidence(t *testing.T) {
	store := testStore(t)
	project := "/home/u/Code/apas"
	err := store.Knowledge.Insert(&models.KnowledgeEntry{
		ID: "weak", ProjectPath: project, KnowledgeType: models.KnowledgeGotcha,
		Content: "uncertain claim about the deploy pipeline", Confidence: 0.3,
		EvidenceCount: 1, SourceSessions: "[]", FirstSeenAt: 1, LastConfirmedAt: 1,
	})
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	got, err := ProjectContext(store, project, 2000)
	if err != nil {
		t.Fatalf("ProjectContext() failed: %v", err)
	}
	if strings.Contains(got, "uncertain claim") {
		t.Errorf("low-confidence entry leaked into context:\n%s", got)
	}
}
