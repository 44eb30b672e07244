// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/blog-engine/pkg/types"
)

func init() {
	viper.SetDefault("workspace", "workspace")

	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.location", "Austin,Texas")
	viper.SetDefault("search.enable_serpapi", true)
	viper.SetDefault("search.enable_brave", false)
	viper.SetDefault("search.timeout", "30s")

	viper.SetDefault("collect.max_pages", 3)
	viper.SetDefault("collect.workers", 3)
	viper.SetDefault("collect.requests_per_second", 2.0)
	viper.SetDefault("collect.min_words", 80)
	viper.SetDefault("collect.timeout", "30s")
	viper.SetDefault("collect.user_agent", "blog-engine/"+version)

	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.model", "gpt-4o")
	viper.SetDefault("ai.max_retries", 3)

	viper.SetDefault("summary.max_input_tokens", 6000)
	viper.SetDefault("interview.questions", 5)
	viper.SetDefault("interview.memory_tokens", 3000)
	viper.SetDefault("outline.min_sections", 3)
	viper.SetDefault("outline.max_sections", 7)
	viper.SetDefault("knowledge.max_results", 8)

	viper.SetDefault("generation.language", "English")
	viper.SetDefault("generation.tone", "conversational")
	viper.SetDefault("generation.context_tokens", 2000)

	viper.SetDefault("image.enabled", false)
	viper.SetDefault("image.model", "dall-e-3")
	viper.SetDefault("image.size", "1024x1024")

	viper.SetDefault("server.addr", ":8080")
}

// aiConfig assembles the shared language model settings. The API key
// falls back to the provider's secret file.
func aiConfig() types.AIConfig {
	cfg := types.AIConfig{
		Provider:   viper.GetString("ai.provider"),
		Model:      viper.GetString("ai.model"),
		APIKey:     viper.GetString("ai.api_key"),
		BaseURL:    viper.GetString("ai.base_url"),
		MaxRetries: viper.GetInt("ai.max_retries"),
	}
	switch cfg.Provider {
	case "anthropic":
		cfg.APIKey = secretDefault("anthropic-api-key", cfg.APIKey)
	default:
		cfg.APIKey = secretDefault("openai-api-key", cfg.APIKey)
	}
	return cfg
}

// loadConfig assembles the full pipeline configuration from the config
// file, environment, and secrets, and validates it.
func loadConfig() (types.PipelineConfig, error) {
	workspace := viper.GetString("workspace")

	cfg := types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("collect.user_agent"),
			},
			MaxResults:    viper.GetInt("search.max_results"),
			Location:      viper.GetString("search.location"),
			EnableSerpAPI: viper.GetBool("search.enable_serpapi"),
			EnableBrave:   viper.GetBool("search.enable_brave"),
			SerpAPIKey:    secretDefault("serpapi-api-key", viper.GetString("search.serpapi_key")),
			BraveAPIKey:   secretDefault("brave-api-key", viper.GetString("search.brave_api_key")),
		},
		Collect: types.CollectConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("collect.timeout"),
				UserAgent: viper.GetString("collect.user_agent"),
			},
			MaxPages:          viper.GetInt("collect.max_pages"),
			Workers:           viper.GetInt("collect.workers"),
			RequestsPerSecond: viper.GetFloat64("collect.requests_per_second"),
			MinWords:          viper.GetInt("collect.min_words"),
			DocumentsDir:      stageDir(workspace, "collect.documents_dir", "documents"),
		},
		Summary: types.SummaryConfig{
			AIConfig:       aiConfig(),
			MaxInputTokens: viper.GetInt("summary.max_input_tokens"),
			SummariesDir:   stageDir(workspace, "summary.summaries_dir", "summaries"),
		},
		Interview: types.InterviewConfig{
			AIConfig:     aiConfig(),
			Questions:    viper.GetInt("interview.questions"),
			MemoryTokens: viper.GetInt("interview.memory_tokens"),
		},
		Outline: types.OutlineConfig{
			AIConfig:    aiConfig(),
			MinSections: viper.GetInt("outline.min_sections"),
			MaxSections: viper.GetInt("outline.max_sections"),
		},
		KnowledgeBase: types.KnowledgeBaseConfig{
			KnowledgeDir: stageDir(workspace, "knowledge.dir", "knowledge"),
			MaxResults:   viper.GetInt("knowledge.max_results"),
		},
		Generation: types.GenerationConfig{
			AIConfig:      aiConfig(),
			Language:      viper.GetString("generation.language"),
			Tone:          viper.GetString("generation.tone"),
			ContextTokens: viper.GetInt("generation.context_tokens"),
			OutputDir:     stageDir(workspace, "generation.output_dir", "articles"),
		},
		Image: types.ImageConfig{
			Enabled:   viper.GetBool("image.enabled"),
			Model:     viper.GetString("image.model"),
			APIKey:    secretDefault("openai-api-key", viper.GetString("image.api_key")),
			Size:      viper.GetString("image.size"),
			OutputDir: stageDir(workspace, "image.output_dir", "articles"),
		},
		Server: types.ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
	}

	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 30 * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return types.PipelineConfig{}, err
	}
	return cfg, nil
}

// stageDir resolves a stage directory: the configured value when set,
// otherwise a subdirectory of the workspace.
func stageDir(workspace, key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return filepath.Join(workspace, fallback)
}
