// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/blog-engine/pkg/types"
)

// OpenAIBackend implements Backend using the official openai-go SDK
// (chat completions). A BaseURL in the config points it at any
// OpenAI-compatible gateway.
type OpenAIBackend struct {
	model string
	opts  []option.RequestOption
}

func newOpenAIBackend(cfg types.AIConfig) *OpenAIBackend {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIBackend{model: cfg.Model, opts: opts}
}

// Name returns the backend identifier.
func (o *OpenAIBackend) Name() string { return "openai" }

// Complete sends one chat completion request and returns the first choice.
func (o *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	client := openai.NewClient(o.opts...)

	var msgs []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, h := range req.History {
		switch h.Role {
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(h.Content))
		default:
			msgs = append(msgs, openai.UserMessage(h.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: msgs,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
