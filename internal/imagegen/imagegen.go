// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagegen produces the article's cover image through the OpenAI
// Images API. The image request returns base64 PNG data which is written
// next to the article artifacts.
package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/blog-engine/pkg/types"
)

const defaultModel = "dall-e-3"

// Backend generates one image for a prompt and returns the PNG bytes.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Generator writes cover images for articles.
type Generator struct {
	backend Backend
	cfg     types.ImageConfig
}

// New builds a Generator over the OpenAI Images API.
func New(cfg types.ImageConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("imagegen: api key missing")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Size == "" {
		cfg.Size = "1024x1024"
	}
	return &Generator{backend: newOpenAIImages(cfg), cfg: cfg}, nil
}

// NewWithBackend builds a Generator over a custom backend.
func NewWithBackend(backend Backend, cfg types.ImageConfig) *Generator {
	if cfg.Size == "" {
		cfg.Size = "1024x1024"
	}
	return &Generator{backend: backend, cfg: cfg}
}

// CoverImage generates a cover image for the article and stores it at
// OutputDir/[article ID].png. The stored path is returned.
func (g *Generator) CoverImage(ctx context.Context, article types.Article) (string, error) {
	prompt := CoverPrompt(article)

	png, err := g.backend.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: generating image: %w", g.backend.Name(), err)
	}
	if len(png) == 0 {
		return "", fmt.Errorf("%s: empty image response", g.backend.Name())
	}

	dir := g.cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}

	path := filepath.Join(dir, article.ID+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("writing image file: %w", err)
	}
	return path, nil
}

// CoverPrompt builds the image prompt from the article's title and topic.
func CoverPrompt(article types.Article) string {
	title := article.Title
	if title == "" {
		title = article.Topic
	}
	return fmt.Sprintf(
		"A clean editorial illustration for a blog article titled %q, about %s. "+
			"Modern flat style, soft colors, no text or lettering in the image.",
		title, article.Topic)
}

// openAIImages is the production Backend over the OpenAI Images API.
type openAIImages struct {
	client openai.Client
	cfg    types.ImageConfig
}

func newOpenAIImages(cfg types.ImageConfig) *openAIImages {
	return &openAIImages{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
	}
}

func (o *openAIImages) Name() string {
	return "openai-images"
}

func (o *openAIImages) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(o.cfg.Model),
		Size:           openai.ImageGenerateParamsSize(o.cfg.Size),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		N:              openai.Int(1),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no image in response")
	}

	png, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decoding image data: %w", err)
	}
	return png, nil
}
