// ABOUTME: Tests for full-text search, FTS escaping, and timeline queries
// ABOUTME: Verifies trigger-maintained index stays in sync through replaces
package sqlite

import (
	"strings"
	"testing"
	"time"
)

func TestEscapeFTS(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain words", "netplan permissions", `"netplan" "permissions"`},
		{"hyphenated token", "go-openai", `"go-openai"`},
		{"colon token", "error: timeout", `"error:" "timeout"`},
		{"embedded quote", `say "hi"`, `"say" """hi"""`},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeFTS(tt.input)
			if got != tt.want {
				t.Errorf("EscapeFTS(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSearchStore_SearchFTS(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)
	messages := NewMessageStore(db)
	search := NewSearchStore(db)
	now := time.Now().Unix()

	session := sampleSession("s1", now)
	if err := messages.ReplaceForSession(session, sampleMessages("s1", now-3600), sessions); err != nil {
		t.Fatalf("ReplaceForSession() failed: %v", err)
	}

	hits, err := search.SearchFTS("netplan permissions", "", 0, 10)
	if err != nil {
		t.Fatalf("SearchFTS() failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("SearchFTS() returned %d hits, want 1", len(hits))
	}
	if hits[0].Session.ID != "s1" {
		t.Errorf("hit session = %s, want s1", hits[0].Session.ID)
	}
	if !strings.Contains(strings.ToLower(hits[0].Snippet), "netplan") {
		t.Errorf("snippet %q should mention netplan", hits[0].Snippet)
	}
}

func TestSearchStore_SearchFTS_HyphenLiteral(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)
	messages := NewMessageStore(db)
	search := NewSearchStore(db)
	now := time.Now().Unix()

	session := sampleSession("s1", now)
	msgs := sampleMessages("s1", now-3600)
	msgs[0].ContentText = "switch the client to go-openai for retries"
	if err := messages.ReplaceForSession(session, msgs, sessions); err != nil {
		t.Fatalf("ReplaceForSession() failed: %v", err)
	}

	// Unquoted, the hyphen would be the FTS5 NOT operator and error out
	hits, err := search.SearchFTS("go-openai", "", 0, 10)
	if err != nil {
		t.Fatalf("SearchFTS() with hyphen failed: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("SearchFTS(go-openai) returned %d hits, want 1", len(hits))
	}
}

func TestSearchStore_SearchFTS_ProjectFilter(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)
	messages := NewMessageStore(db)
	search := NewSearchStore(db)
	now := time.Now().Unix()

	session := sampleSession("s1", now)
	if err := messages.ReplaceForSession(session, sampleMessages("s1", now-3600), sessions); err != nil {
		t.Fatalf("ReplaceForSession() failed: %v", err)
	}

	hits, err := search.SearchFTS("netplan", "/home/u/code/other", 0, 10)
	if err != nil {
		t.Fatalf("SearchFTS() failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("SearchFTS() with non-matching project returned %d hits, want 0", len(hits))
	}
}

func TestSearchStore_FTSIndexFollowsReplace(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)
	messages := NewMessageStore(db)
	search := NewSearchStore(db)
	now := time.Now().Unix()

	session := sampleSession("s1", now)
	if err := messages.ReplaceForSession(session, sampleMessages("s1", now-3600), sessions); err != nil {
		t.Fatalf("ReplaceForSession() failed: %v", err)
	}

	// Replace with content that no longer mentions netplan
	msgs := sampleMessages("s1", now-3600)[:1]
	msgs[0].ContentText = "something entirely different"
	if err := messages.ReplaceForSession(session, msgs, sessions); err != nil {
		t.Fatalf("ReplaceForSession() failed: %v", err)
	}

	hits, err := search.SearchFTS("netplan", "", 0, 10)
	if err != nil {
		t.Fatalf("SearchFTS() failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("stale index: SearchFTS(netplan) returned %d hits after replace, want 0", len(hits))
	}
}

func TestSearchStore_Timeline(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)
	search := NewSearchStore(db)
	now := time.Now().Unix()

	for i, id := range []string{"s1", "s2", "s3"} {
		if err := sessions.Upsert(sampleSession(id, now+int64(i)*60)); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", id, err)
		}
	}

	entries, err := search.Timeline("", 0, 0, 10)
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Timeline() returned %d entries, want 3", len(entries))
	}
	if entries[0].Session.ID != "s3" {
		t.Errorf("newest-first order broken: first = %s, want s3", entries[0].Session.ID)
	}

	entries, err = search.Timeline("", now+30, now+90, 10)
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Session.ID != "s2" {
		t.Errorf("Timeline() window returned %d entries, want just s2", len(entries))
	}
}

func TestStatsStore_Collect(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)
	messages := NewMessageStore(db)
	stats := NewStatsStore(db)
	now := time.Now().Unix()

	session := sampleSession("s1", now)
	if err := messages.ReplaceForSession(session, sampleMessages("s1", now-3600), sessions); err != nil {
		t.Fatalf("ReplaceForSession() failed: %v", err)
	}

	got, err := stats.Collect()
	if err != nil {
		t.Fatalf("Collect() failed: %v", err)
	}
	if got.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d, want 1", got.TotalSessions)
	}
	if got.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", got.TotalMessages)
	}
	if got.BySource["codex"] != 1 {
		t.Errorf("BySource[codex] = %d, want 1", got.BySource["codex"])
	}
	if got.ByTier["L3"] != 1 {
		t.Errorf("ByTier[L3] = %d, want 1", got.ByTier["L3"])
	}
}
