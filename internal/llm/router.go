// ABOUTME: Routes enrichment calls to a backend chain keyed by session source
// ABOUTME: Walks the chain on failure; a pinned backend's failure is final
package llm

import (
	"context"
	"fmt"
)

// Router dispatches enrichment calls by session source. Each source tag maps
// to a priority list of backend names; unavailable backends are skipped and
// call failures fall through to the next entry.
type Router struct {
	backends map[string]Backend
	chains   map[string][]string
	fallback []string
}

// NewRouter creates a router over the given backends with the standard
// source chains. Registration order becomes the fallback chain for unknown
// sources.
func NewRouter(backends ...Backend) *Router {
	r := &Router{
		backends: make(map[string]Backend),
		chains:   make(map[string][]string),
	}
	for _, b := range backends {
		r.Register(b)
	}
	// Each source prefers its own tool so summaries are generated by the
	// same family that produced the transcript
	r.SetChain("claude_code", "claude", "codex", "gemini", "openai")
	r.SetChain("codex", "codex", "claude", "gemini", "openai")
	r.SetChain("gemini", "gemini", "claude", "codex", "openai")
	return r
}

// Register adds a backend under its own name, appending it to the fallback
// chain
func (r *Router) Register(b Backend) {
	if _, seen := r.backends[b.Name()]; !seen {
		r.fallback = append(r.fallback, b.Name())
	}
	r.backends[b.Name()] = b
}

// SetChain replaces the backend priority list for a source tag
func (r *Router) SetChain(source string, names ...string) {
	r.chains[source] = names
}

// Backend returns the registered backend by name, or nil
func (r *Router) Backend(name string) Backend {
	return r.backends[name]
}

// Enrich dispatches a prompt and returns the reply plus the name of the
// backend that produced it. A non-empty override pins that backend and its
// failure is final; otherwise the source's chain is walked until a backend
// succeeds.
func (r *Router) Enrich(ctx context.Context, source, override, prompt string) (string, string, error) {
	if override != "" {
		b, ok := r.backends[override]
		if !ok {
			return "", "", fmt.Errorf("unknown backend %q", override)
		}
		if !b.Available() {
			return "", "", fmt.Errorf("backend %q is not available", override)
		}
		text, err := b.Enrich(ctx, prompt)
		return text, override, err
	}

	chain, ok := r.chains[source]
	if !ok {
		chain = r.fallback
	}

	var lastErr error
	for _, name := range chain {
		b, ok := r.backends[name]
		if !ok || !b.Available() {
			continue
		}
		text, err := b.Enrich(ctx, prompt)
		if err == nil {
			return text, name, nil
		}
		lastErr = fmt.Errorf("backend %s: %w", name, err)
		if ctx.Err() != nil {
			return "", "", lastErr
		}
	}

	if lastErr != nil {
		return "", "", lastErr
	}
	return "", "", ErrNoBackend
}
