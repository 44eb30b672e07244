// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline chains the research and writing stages end to end:
// search, collect, summarize, interview, outline, draft, and the cover
// image. Each stage consumes the previous stage's output and failures
// abort the run, except the cover image which degrades to a warning.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/blog-engine/internal/collect"
	"github.com/pdiddy/blog-engine/internal/draft"
	"github.com/pdiddy/blog-engine/internal/imagegen"
	"github.com/pdiddy/blog-engine/internal/interview"
	"github.com/pdiddy/blog-engine/internal/knowledge"
	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/internal/outline"
	"github.com/pdiddy/blog-engine/internal/search"
	"github.com/pdiddy/blog-engine/internal/summarize"
	"github.com/pdiddy/blog-engine/pkg/types"
)

// Stages holds the stage functions the pipeline runs. Tests substitute
// individual stages; production code uses the defaults from New.
type Stages struct {
	Search    func(ctx context.Context, topic string, w io.Writer) ([]types.WebResult, error)
	Collect   func(ctx context.Context, results []types.WebResult, w io.Writer) ([]types.Document, error)
	Summarize func(ctx context.Context, topic string, docs []types.Document, w io.Writer) ([]types.DocumentSummary, error)
	Interview func(ctx context.Context, topic string, summaries []types.DocumentSummary, w io.Writer) ([]types.QAPair, error)
	Outline   func(ctx context.Context, topic, notes string, qa []types.QAPair) (types.Outline, error)
	Draft     func(ctx context.Context, topic string, o types.Outline, w io.Writer) (types.Article, error)
	Image     func(ctx context.Context, article types.Article) (string, error)
	Ingest    func(ctx context.Context, topic string, docs []types.Document, summaries []types.DocumentSummary, qa []types.QAPair) error
}

// Pipeline runs the full topic-to-article flow.
type Pipeline struct {
	cfg    types.PipelineConfig
	stages Stages
}

// New builds a Pipeline with production stages. The knowledge base is
// opened per run, so New itself touches no files.
func New(cfg types.PipelineConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg}
	p.stages = Stages{
		Search:    p.runSearch,
		Collect:   p.runCollect,
		Summarize: p.runSummarize,
		Interview: p.runInterview,
		Outline:   p.runOutline,
		Draft:     p.runDraft,
		Image:     p.runImage,
		Ingest:    p.runIngest,
	}
	return p, nil
}

// NewWithStages builds a Pipeline over custom stage functions.
func NewWithStages(cfg types.PipelineConfig, stages Stages) *Pipeline {
	return &Pipeline{cfg: cfg, stages: stages}
}

// Run executes the full pipeline for a topic and returns the finished
// article. Progress for every stage is written to w.
func (p *Pipeline) Run(ctx context.Context, topic string, w io.Writer) (types.Article, error) {
	fmt.Fprintf(w, "== searching: %s\n", topic)
	results, err := p.stages.Search(ctx, topic, w)
	if err != nil {
		return types.Article{}, fmt.Errorf("search stage: %w", err)
	}

	fmt.Fprintf(w, "== collecting %d pages\n", len(results))
	docs, err := p.stages.Collect(ctx, results, w)
	if err != nil {
		return types.Article{}, fmt.Errorf("collect stage: %w", err)
	}

	fmt.Fprintf(w, "== summarizing %d documents\n", len(docs))
	summaries, err := p.stages.Summarize(ctx, topic, docs, w)
	if err != nil {
		return types.Article{}, fmt.Errorf("summarize stage: %w", err)
	}

	fmt.Fprintln(w, "== interviewing the expert")
	qa, err := p.stages.Interview(ctx, topic, summaries, w)
	if err != nil {
		return types.Article{}, fmt.Errorf("interview stage: %w", err)
	}

	fmt.Fprintln(w, "== indexing research")
	if err := p.stages.Ingest(ctx, topic, docs, summaries, qa); err != nil {
		return types.Article{}, fmt.Errorf("knowledge stage: %w", err)
	}

	fmt.Fprintln(w, "== planning the outline")
	o, err := p.stages.Outline(ctx, topic, interview.FormatNotes(summaries), qa)
	if err != nil {
		return types.Article{}, fmt.Errorf("outline stage: %w", err)
	}
	fmt.Fprintf(w, "outline: %s (%d sections)\n", o.Title, len(o.Sections))

	fmt.Fprintln(w, "== drafting the article")
	article, err := p.stages.Draft(ctx, topic, o, w)
	if err != nil {
		return types.Article{}, fmt.Errorf("draft stage: %w", err)
	}

	if p.cfg.Image.Enabled {
		fmt.Fprintln(w, "== generating the cover image")
		path, err := p.stages.Image(ctx, article)
		if err != nil {
			fmt.Fprintf(w, "warning: cover image failed: %v\n", err)
		} else {
			article.ImagePath = path
		}
	}

	fmt.Fprintf(w, "== done: %s (%d words)\n", article.Title, article.WordCount)
	return article, nil
}

// --- production stages ---

func (p *Pipeline) runSearch(ctx context.Context, topic string, w io.Writer) ([]types.WebResult, error) {
	out, err := search.Search(ctx, topic, search.Backends(p.cfg.Search), p.cfg.Search, w)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (p *Pipeline) runCollect(ctx context.Context, results []types.WebResult, w io.Writer) ([]types.Document, error) {
	urls, err := collect.PrepareURLs(results, p.cfg.Collect.MaxPages)
	if err != nil {
		return nil, err
	}
	docs, _, err := collect.New(p.cfg.Collect).CollectAll(ctx, urls, w)
	return docs, err
}

func (p *Pipeline) runSummarize(ctx context.Context, topic string, docs []types.Document, w io.Writer) ([]types.DocumentSummary, error) {
	backend, err := llm.New(p.cfg.Summary.AIConfig)
	if err != nil {
		return nil, err
	}
	s, err := summarize.New(backend, p.cfg.Summary)
	if err != nil {
		return nil, err
	}
	return s.SummarizeAll(ctx, topic, docs, w)
}

func (p *Pipeline) runInterview(ctx context.Context, topic string, summaries []types.DocumentSummary, w io.Writer) ([]types.QAPair, error) {
	backend, err := llm.New(p.cfg.Interview.AIConfig)
	if err != nil {
		return nil, err
	}
	iv, err := interview.New(backend, p.cfg.Interview)
	if err != nil {
		return nil, err
	}
	return iv.Conduct(ctx, topic, summaries, w)
}

func (p *Pipeline) runIngest(ctx context.Context, topic string, docs []types.Document, summaries []types.DocumentSummary, qa []types.QAPair) error {
	store, err := knowledge.NewStore(p.cfg.KnowledgeBase)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, doc := range docs {
		if err := store.AddDocument(ctx, doc); err != nil {
			return err
		}
	}
	for _, s := range summaries {
		if err := store.AddSummary(ctx, s); err != nil {
			return err
		}
	}
	return store.AddInterview(ctx, topic, qa)
}

func (p *Pipeline) runOutline(ctx context.Context, topic, notes string, qa []types.QAPair) (types.Outline, error) {
	backend, err := llm.New(p.cfg.Outline.AIConfig)
	if err != nil {
		return types.Outline{}, err
	}
	planner, err := outline.New(backend, p.cfg.Outline)
	if err != nil {
		return types.Outline{}, err
	}
	return planner.Plan(ctx, topic, notes, qa)
}

func (p *Pipeline) runDraft(ctx context.Context, topic string, o types.Outline, w io.Writer) (types.Article, error) {
	backend, err := llm.New(p.cfg.Generation.AIConfig)
	if err != nil {
		return types.Article{}, err
	}
	store, err := knowledge.NewStore(p.cfg.KnowledgeBase)
	if err != nil {
		return types.Article{}, err
	}
	defer store.Close()

	d, err := draft.New(backend, store, p.cfg.Generation)
	if err != nil {
		return types.Article{}, err
	}
	return d.Draft(ctx, topic, o, w)
}

func (p *Pipeline) runImage(ctx context.Context, article types.Article) (string, error) {
	g, err := imagegen.New(p.cfg.Image)
	if err != nil {
		return "", err
	}
	return g.CoverImage(ctx, article)
}
