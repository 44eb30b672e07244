// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "blog-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the web search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results to return (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" validate:"min=0,max=100"`

	// Location is the geographic bias sent to search backends
	// (default "Austin,Texas").
	Location string `json:"location" yaml:"location"`

	// EnableSerpAPI controls whether the SerpAPI Google backend is used.
	EnableSerpAPI bool `json:"enable_serpapi" yaml:"enable_serpapi"`

	// EnableBrave controls whether the Brave Search backend is used.
	EnableBrave bool `json:"enable_brave" yaml:"enable_brave"`

	// SerpAPIKey authenticates against SerpAPI.
	SerpAPIKey string `json:"serpapi_key,omitempty" yaml:"serpapi_key,omitempty"`

	// BraveAPIKey authenticates against the Brave Search API.
	BraveAPIKey string `json:"brave_api_key,omitempty" yaml:"brave_api_key,omitempty"`
}

// CollectConfig holds settings for the page collection stage.
type CollectConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxPages is the number of top-ranked search results to fetch (default 3).
	MaxPages int `json:"max_pages" yaml:"max_pages" validate:"min=0,max=25"`

	// Workers is the size of the fetch worker pool (default 3).
	Workers int `json:"workers" yaml:"workers" validate:"min=0,max=16"`

	// RequestsPerSecond caps the outbound fetch rate (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MinWords drops pages whose extracted text is shorter than this (default 80).
	MinWords int `json:"min_words" yaml:"min_words"`

	// DocumentsDir is the directory for fetched document artifacts.
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir"`
}

// AIConfig holds shared settings for stages that call a hosted language model.
type AIConfig struct {
	// Provider selects the LLM backend: "openai" or "anthropic".
	Provider string `json:"provider" yaml:"provider" validate:"omitempty,oneof=openai anthropic"`

	// Model is the model identifier (e.g. "gpt-4o", "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the LLM API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" validate:"min=0,max=10"`
}

// SummaryConfig holds settings for the summarization stage.
type SummaryConfig struct {
	AIConfig `yaml:",inline"`

	// MaxInputTokens bounds the document text sent per summary call (default 6000).
	MaxInputTokens int `json:"max_input_tokens" yaml:"max_input_tokens"`

	// SummariesDir is the directory for summary artifacts.
	SummariesDir string `json:"summaries_dir" yaml:"summaries_dir"`
}

// InterviewConfig holds settings for the interview Q&A stage.
type InterviewConfig struct {
	AIConfig `yaml:",inline"`

	// Questions is the number of interview questions to generate (default 5).
	Questions int `json:"questions" yaml:"questions" validate:"min=0,max=20"`

	// MemoryTokens bounds the rolling conversation buffer (default 3000).
	MemoryTokens int `json:"memory_tokens" yaml:"memory_tokens"`
}

// OutlineConfig holds settings for the outline stage.
type OutlineConfig struct {
	AIConfig `yaml:",inline"`

	// MinSections and MaxSections bound the generated outline length.
	MinSections int `json:"min_sections" yaml:"min_sections" validate:"min=0"`
	MaxSections int `json:"max_sections" yaml:"max_sections" validate:"min=0,max=12"`
}

// KnowledgeBaseConfig holds settings for the retrieval index.
type KnowledgeBaseConfig struct {
	// KnowledgeDir is the base directory for the index (contains index/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir"`

	// MaxResults is the default maximum number of query results (default 8).
	MaxResults int `json:"max_results" yaml:"max_results" validate:"min=0,max=100"`
}

// GenerationConfig holds settings for the article drafting stage.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// Language is the output language for the article (default "English").
	Language string `json:"language" yaml:"language"`

	// Tone steers the writing voice (e.g. "conversational", "technical").
	Tone string `json:"tone,omitempty" yaml:"tone,omitempty"`

	// ContextTokens bounds the retrieved reference text per section (default 2000).
	ContextTokens int `json:"context_tokens" yaml:"context_tokens"`

	// OutputDir is the directory for generated articles.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ImageConfig holds settings for cover image generation.
type ImageConfig struct {
	// Enabled controls whether the image stage runs.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Model is the image model identifier (default "dall-e-3").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the image API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Size is the generated image size (default "1024x1024").
	Size string `json:"size" yaml:"size" validate:"omitempty,oneof=1024x1024 1792x1024 1024x1792"`

	// OutputDir is the directory for generated images.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ServerConfig holds settings for the web form server.
type ServerConfig struct {
	// Addr is the HTTP listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search        SearchConfig        `json:"search" yaml:"search"`
	Collect       CollectConfig       `json:"collect" yaml:"collect"`
	Summary       SummaryConfig       `json:"summary" yaml:"summary"`
	Interview     InterviewConfig     `json:"interview" yaml:"interview"`
	Outline       OutlineConfig       `json:"outline" yaml:"outline"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base"`
	Generation    GenerationConfig    `json:"generation" yaml:"generation"`
	Image         ImageConfig         `json:"image" yaml:"image"`
	Server        ServerConfig        `json:"server" yaml:"server"`
}

// Validate checks field constraints across all stage configurations.
func (c *PipelineConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if c.Outline.MaxSections > 0 && c.Outline.MinSections > c.Outline.MaxSections {
		return fmt.Errorf("validating config: outline min_sections %d exceeds max_sections %d",
			c.Outline.MinSections, c.Outline.MaxSections)
	}
	return nil
}
