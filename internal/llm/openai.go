// ABOUTME: OpenAI API enrichment backend with retry and backoff
// ABOUTME: Serves as the fallback when no CLI tool is installed
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/lifelong-memory/internal/util"
)

// DefaultOpenAIModel is the chat model used when none is configured
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIBackend wraps the OpenAI chat API behind the Backend interface
type OpenAIBackend struct {
	client     *openai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIBackend creates an OpenAI backend. A nil backend is returned when
// the key is empty; Available() on the zero value is false either way.
func NewOpenAIBackend(apiKey, model string, maxRetries int, retryDelay time.Duration) *OpenAIBackend {
	if apiKey == "" {
		return &OpenAIBackend{}
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIBackend{
		client:     openai.NewClient(apiKey),
		model:      model,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Available() bool { return b.client != nil }

func (b *OpenAIBackend) Enrich(ctx context.Context, prompt string) (string, error) {
	if b.client == nil {
		return "", fmt.Errorf("openai backend not configured: missing API key")
	}

	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(b.retryDelay, attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: b.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.2,
		})
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				return "", lastErr
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("openai call failed after %d attempts: %w", b.maxRetries+1, lastErr)
}
