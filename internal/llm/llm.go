// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides the language model backends shared by the
// summarization, interview, outline, and drafting stages. Each backend
// wraps one vendor API behind the Backend interface so stages can be
// tested against a mock.
package llm

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/blog-engine/pkg/types"
)

// Roles for conversation history messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single prior turn supplied as conversation context.
type Message struct {
	Role    string // RoleUser or RoleAssistant
	Content string
}

// Request holds one completion call: a system instruction, optional
// prior turns, and the user prompt.
type Request struct {
	System    string
	History   []Message
	User      string
	MaxTokens int
}

// Backend completes a single request against one vendor API.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds a Backend from the stage's AI configuration.
func New(cfg types.AIConfig) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm provider %q: api key missing", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm provider %q: model is required", cfg.Provider)
	}
	switch cfg.Provider {
	case "", "openai":
		return newOpenAIBackend(cfg), nil
	case "anthropic":
		return newAnthropicBackend(cfg), nil
	default:
		return nil, fmt.Errorf("llm provider %q not supported", cfg.Provider)
	}
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// CompleteWithRetry calls the backend with exponential backoff. When
// maxRetries is 0 the default (3) is used.
func CompleteWithRetry(ctx context.Context, b Backend, req Request, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := b.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("%s: after %d retries: %w", b.Name(), maxRetries, lastErr)
}
