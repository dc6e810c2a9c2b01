// ABOUTME: Backend abstraction for LLM enrichment calls
// ABOUTME: Implementations wrap locally installed CLI tools and the OpenAI API
package llm

import (
	"context"
	"errors"
)

// Backend produces text completions for enrichment prompts
type Backend interface {
	// Name is the backend's registry key: claude, codex, gemini, or openai
	Name() string
	// Available reports whether the backend can serve a call right now
	Available() bool
	// Enrich sends a prompt and returns the raw text response
	Enrich(ctx context.Context, prompt string) (string, error)
}

// ErrNoBackend means no registered backend could serve the call
var ErrNoBackend = errors.New("no usable enrichment backend")
