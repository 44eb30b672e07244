// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline plans the article structure before drafting. The model
// proposes a title, an introduction hook, and an ordered list of sections
// with notes, constrained to the configured section count.
package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/pkg/types"
)

const (
	defaultMinSections = 3
	defaultMaxSections = 7
)

const outlineSystem = `You are an editor planning a blog article. You design
outlines that flow logically from an engaging introduction to a concrete
conclusion, covering only what the research notes support.`

const outlinePromptText = `Plan a blog article about "%s" using the research
notes and interview below. Propose between %d and %d sections, each with a
heading and the bullet points it should cover. Do not include the introduction
or conclusion as sections; they are written separately.

Respond with a single JSON object conforming to this JSON Schema. Do not
include any text outside the JSON object.

%s

Research notes:
%s

Interview:
%s`

// Planner generates article outlines.
type Planner struct {
	backend llm.Backend
	cfg     types.OutlineConfig
}

// New builds a Planner.
func New(backend llm.Backend, cfg types.OutlineConfig) (*Planner, error) {
	if backend == nil {
		return nil, fmt.Errorf("outline: backend is required")
	}
	if cfg.MinSections <= 0 {
		cfg.MinSections = defaultMinSections
	}
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = defaultMaxSections
	}
	if cfg.MinSections > cfg.MaxSections {
		return nil, fmt.Errorf("outline: min sections %d exceeds max %d", cfg.MinSections, cfg.MaxSections)
	}
	return &Planner{backend: backend, cfg: cfg}, nil
}

// Plan asks the model for an outline grounded in the research notes and
// interview answers. Outlines with too few sections are rejected; extra
// sections beyond the maximum are dropped from the end.
func (p *Planner) Plan(ctx context.Context, topic, notes string, interview []types.QAPair) (types.Outline, error) {
	schema, err := outlineSchema()
	if err != nil {
		return types.Outline{}, err
	}

	prompt := fmt.Sprintf(outlinePromptText,
		topic, p.cfg.MinSections, p.cfg.MaxSections, schema, notes, formatInterview(interview))

	reply, err := llm.CompleteWithRetry(ctx, p.backend, llm.Request{
		System: outlineSystem,
		User:   prompt,
	}, p.cfg.MaxRetries)
	if err != nil {
		return types.Outline{}, fmt.Errorf("completing outline: %w", err)
	}

	outline, err := parseOutline(reply)
	if err != nil {
		return types.Outline{}, err
	}

	if len(outline.Sections) < p.cfg.MinSections {
		return types.Outline{}, fmt.Errorf("outline has %d sections, need at least %d",
			len(outline.Sections), p.cfg.MinSections)
	}
	if len(outline.Sections) > p.cfg.MaxSections {
		outline.Sections = outline.Sections[:p.cfg.MaxSections]
	}
	return outline, nil
}

func outlineSchema() (string, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	data, err := json.MarshalIndent(reflector.Reflect(&types.Outline{}), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling outline schema: %w", err)
	}
	return string(data), nil
}

func formatInterview(pairs []types.QAPair) string {
	if len(pairs) == 0 {
		return "(no interview)"
	}
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", p.Question, p.Answer)
	}
	return strings.TrimSpace(b.String())
}

func parseOutline(reply string) (types.Outline, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return types.Outline{}, fmt.Errorf("no JSON object in model reply")
	}

	var outline types.Outline
	if err := json.Unmarshal([]byte(reply[start:end+1]), &outline); err != nil {
		return types.Outline{}, fmt.Errorf("parsing outline JSON: %w", err)
	}
	if outline.Title == "" {
		return types.Outline{}, fmt.Errorf("outline JSON has no title")
	}
	return outline, nil
}
