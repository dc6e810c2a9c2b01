// ABOUTME: Tests for summary storage and tier transitions
// ABOUTME: Writing promotes to L2, deleting reverts to L3
package sqlite

import (
	"testing"
	"time"

	"github.com/harper/lifelong-memory/internal/models"
)

func TestSummaryStore_UpsertPromotesTier(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)
	summaries := NewSummaryStore(db)
	now := time.Now().Unix()

	if err := sessions.Upsert(sampleSession("s1", now)); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	err := summaries.Upsert(&models.Summary{
		SessionID:        "s1",
		SummaryText:      "Fixed netplan permissions on Ubuntu",
		KeyDecisions:     `["Used chmod 600"]`,
		FilesTouched:     `["/etc/netplan/config.yaml"]`,
		CommandsRun:      `["chmod 600"]`,
		Outcome:          models.OutcomeCompleted,
		GeneratedAt:      now,
		GeneratorBackend: "test",
	})
	if err != nil {
		t.Fatalf("summary Upsert() failed: %v", err)
	}

	summary, err := summaries.Get("s1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if summary == nil {
		t.Fatal("Get() = nil, want summary")
	}
	if summary.Outcome != models.OutcomeCompleted {
		t.Errorf("Outcome = %s, want completed", summary.Outcome)
	}

	session, err := sessions.GetByID("s1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if session.Tier != models.TierSummarized {
		t.Errorf("Tier = %s, want %s after summary write", session.Tier, models.TierSummarized)
	}
}

func TestSummaryStore_DeleteRevertsTier(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)
	summaries := NewSummaryStore(db)
	now := time.Now().Unix()

	if err := sessions.Upsert(sampleSession("s1", now)); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	err := summaries.Upsert(&models.Summary{
		SessionID: "s1", SummaryText: "x", KeyDecisions: "[]",
		FilesTouched: "[]", CommandsRun: "[]", Outcome: models.OutcomePartial,
		GeneratedAt: now, GeneratorBackend: "test",
	})
	if err != nil {
		t.Fatalf("summary Upsert() failed: %v", err)
	}

	if err := summaries.Delete("s1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	summary, err := summaries.Get("s1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if summary != nil {
		t.Errorf("Get() = %+v after delete, want nil", summary)
	}

	session, err := sessions.GetByID("s1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if session.Tier != models.TierRaw {
		t.Errorf("Tier = %s, want %s after summary delete", session.Tier, models.TierRaw)
	}
}

func TestSummaryStore_GetMissing(t *testing.T) {
	db := testDB(t)
	summaries := NewSummaryStore(db)

	summary, err := summaries.Get("nonexistent")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if summary != nil {
		t.Errorf("Get() = %+v, want nil", summary)
	}
}

func TestSummaryStore_RecentForProject(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)
	summaries := NewSummaryStore(db)
	now := time.Now().Unix()

	for i, id := range []string{"s1", "s2"} {
		s := sampleSession(id, now+int64(i)*60)
		if err := sessions.Upsert(s); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", id, err)
		}
		err := summaries.Upsert(&models.Summary{
			SessionID: id, SummaryText: "summary " + id, KeyDecisions: "[]",
			FilesTouched: "[]", CommandsRun: "[]", Outcome: models.OutcomeCompleted,
			GeneratedAt: now, GeneratorBackend: "test",
		})
		if err != nil {
			t.Fatalf("summary Upsert(%s) failed: %v", id, err)
		}
	}

	got, err := summaries.RecentForProject("/home/u/code/myproject", 10)
	if err != nil {
		t.Fatalf("RecentForProject() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentForProject() returned %d summaries, want 2", len(got))
	}
	if got[0].SessionID != "s2" {
		t.Errorf("newest summary = %s, want s2", got[0].SessionID)
	}
}
