// ABOUTME: Tests for backend routing, fallback chains, and pinned backends
// ABOUTME: Uses fake in-memory backends; no CLI tools or network involved
package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeBackend struct {
	name      string
	available bool
	reply     string
	err       error
	calls     int
}

func (f *fakeBackend) Name() string    { return f.name }
func (f *fakeBackend) Available() bool { return f.available }
func (f *fakeBackend) Enrich(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestRouter_PrefersSourceBackend(t *testing.T) {
	claude := &fakeBackend{name: "claude", available: true, reply: "from claude"}
	codex := &fakeBackend{name: "codex", available: true, reply: "from codex"}
	r := NewRouter(claude, codex)

	got, backend, err := r.Enrich(context.Background(), "codex", "", "hi")
	if err != nil {
		t.Fatalf("Enrich() failed: %v", err)
	}
	if got != "from codex" {
		t.Errorf("Enrich() = %q, want the codex reply", got)
	}
	if backend != "codex" {
		t.Errorf("backend = %s, want codex", backend)
	}
	if claude.calls != 0 {
		t.Errorf("claude was called %d times, want 0", claude.calls)
	}
}

func TestRouter_SkipsUnavailable(t *testing.T) {
	codex := &fakeBackend{name: "codex", available: false, reply: "from codex"}
	claude := &fakeBackend{name: "claude", available: true, reply: "from claude"}
	r := NewRouter(claude, codex)

	got, backend, err := r.Enrich(context.Background(), "codex", "", "hi")
	if err != nil {
		t.Fatalf("Enrich() failed: %v", err)
	}
	if got != "from claude" {
		t.Errorf("Enrich() = %q, want the claude fallback", got)
	}
	if backend != "claude" {
		t.Errorf("backend = %s, want claude", backend)
	}
	if codex.calls != 0 {
		t.Errorf("unavailable codex was called %d times, want 0", codex.calls)
	}
}

func TestRouter_FallsThroughOnFailure(t *testing.T) {
	codex := &fakeBackend{name: "codex", available: true, err: errors.New("boom")}
	gemini := &fakeBackend{name: "gemini", available: true, reply: "from gemini"}
	r := NewRouter(codex, gemini)

	got, backend, err := r.Enrich(context.Background(), "codex", "", "hi")
	if err != nil {
		t.Fatalf("Enrich() failed: %v", err)
	}
	if got != "from gemini" {
		t.Errorf("Enrich() = %q, want the gemini fallback", got)
	}
	if backend != "gemini" {
		t.Errorf("backend = %s, want gemini", backend)
	}
	if codex.calls != 1 {
		t.Errorf("codex calls = %d, want 1", codex.calls)
	}
}

func TestRouter_PinnedFailureIsFinal(t *testing.T) {
	codex := &fakeBackend{name: "codex", available: true, err: errors.New("boom")}
	gemini := &fakeBackend{name: "gemini", available: true, reply: "from gemini"}
	r := NewRouter(codex, gemini)

	_, _, err := r.Enrich(context.Background(), "codex", "codex", "hi")
	if err == nil {
		t.Fatal("pinned backend failure should be final")
	}
	if gemini.calls != 0 {
		t.Errorf("gemini was called %d times despite the pin, want 0", gemini.calls)
	}
}

func TestRouter_PinnedUnknownBackend(t *testing.T) {
	r := NewRouter(&fakeBackend{name: "claude", available: true})
	_, _, err := r.Enrich(context.Background(), "claude_code", "nonexistent", "hi")
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("err = %v, want unknown backend error", err)
	}
}

func TestRouter_NothingAvailable(t *testing.T) {
	r := NewRouter(&fakeBackend{name: "claude", available: false})
	_, _, err := r.Enrich(context.Background(), "claude_code", "", "hi")
	if !errors.Is(err, ErrNoBackend) {
		t.Errorf("err = %v, want ErrNoBackend", err)
	}
}

func TestRouter_UnknownSourceUsesRegistrationOrder(t *testing.T) {
	first := &fakeBackend{name: "openai", available: true, reply: "from openai"}
	second := &fakeBackend{name: "claude", available: true, reply: "from claude"}
	r := NewRouter(first, second)

	got, backend, err := r.Enrich(context.Background(), "some_new_source", "", "hi")
	if err != nil {
		t.Fatalf("Enrich() failed: %v", err)
	}
	if got != "from openai" {
		t.Errorf("Enrich() = %q, want first registered backend", got)
	}
	if backend != "openai" {
		t.Errorf("backend = %s, want openai", backend)
	}
}
