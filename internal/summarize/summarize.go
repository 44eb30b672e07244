// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns collected pages into structured research notes.
// Each document is summarized independently by the configured language
// model; documents that fail are skipped, but at least one summary must
// succeed for the stage to succeed.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/pkg/types"
)

const (
	defaultMaxInputTokens = 6000
	fallbackEncoding      = "cl100k_base"
)

// Summarizer produces structured summaries of collected documents.
type Summarizer struct {
	backend llm.Backend
	cfg     types.SummaryConfig
	enc     *tiktoken.Tiktoken
}

// New builds a Summarizer backed by the given model backend. The token
// encoder is chosen from the configured model name, falling back to
// cl100k_base for models tiktoken does not know about.
func New(backend llm.Backend, cfg types.SummaryConfig) (*Summarizer, error) {
	if backend == nil {
		return nil, fmt.Errorf("summarize: backend is required")
	}
	if cfg.MaxInputTokens <= 0 {
		cfg.MaxInputTokens = defaultMaxInputTokens
	}

	enc, err := tiktoken.EncodingForModel(cfg.Model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("loading token encoding: %w", err)
		}
	}

	return &Summarizer{backend: backend, cfg: cfg, enc: enc}, nil
}

// SummarizeAll summarizes every document concurrently and reports progress
// to w. The returned summaries keep the order of the input documents.
// Documents whose summarization fails are dropped with a warning; if none
// succeed, an error is returned.
func (s *Summarizer) SummarizeAll(ctx context.Context, topic string, docs []types.Document, w io.Writer) ([]types.DocumentSummary, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to summarize")
	}

	type outcome struct {
		summary types.DocumentSummary
		err     error
	}
	outcomes := make([]outcome, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc types.Document) {
			defer wg.Done()
			summary, err := s.Summarize(ctx, topic, doc)
			outcomes[i] = outcome{summary: summary, err: err}
		}(i, doc)
	}
	wg.Wait()

	summaries := make([]types.DocumentSummary, 0, len(docs))
	for i, out := range outcomes {
		if out.err != nil {
			fmt.Fprintf(w, "warning: summarizing %s: %v\n", docs[i].URL, out.err)
			continue
		}
		fmt.Fprintf(w, "summarized %s\n", docs[i].URL)
		summaries = append(summaries, out.summary)
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no summaries could be generated from %d documents", len(docs))
	}

	if s.cfg.SummariesDir != "" {
		if err := s.writeSummaries(summaries); err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

// Summarize produces a structured summary of a single document.
func (s *Summarizer) Summarize(ctx context.Context, topic string, doc types.Document) (types.DocumentSummary, error) {
	instructions, err := FormatInstructions()
	if err != nil {
		return types.DocumentSummary{}, err
	}

	prompt, err := renderPrompt(promptData{
		Topic:              topic,
		Title:              doc.Title,
		URL:                doc.URL,
		FormatInstructions: instructions,
		Text:               s.truncate(doc.Text),
	})
	if err != nil {
		return types.DocumentSummary{}, err
	}

	reply, err := llm.CompleteWithRetry(ctx, s.backend, llm.Request{
		System: summarySystem,
		User:   prompt,
	}, s.cfg.MaxRetries)
	if err != nil {
		return types.DocumentSummary{}, fmt.Errorf("completing summary: %w", err)
	}

	summary, err := parseSummary(reply)
	if err != nil {
		return types.DocumentSummary{}, err
	}
	summary.SourceID = doc.ID
	summary.SourceURL = doc.URL
	summary.SourceTitle = doc.Title
	return summary, nil
}

// truncate caps text at the configured input token budget.
func (s *Summarizer) truncate(text string) string {
	tokens := s.enc.Encode(text, nil, nil)
	if len(tokens) <= s.cfg.MaxInputTokens {
		return text
	}
	return s.enc.Decode(tokens[:s.cfg.MaxInputTokens])
}

// parseSummary decodes a model reply into a DocumentSummary. Models
// sometimes wrap the JSON in prose or code fences, so parsing starts at
// the first brace and ends at the last.
func parseSummary(reply string) (types.DocumentSummary, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return types.DocumentSummary{}, fmt.Errorf("no JSON object in model reply")
	}

	var summary types.DocumentSummary
	if err := json.Unmarshal([]byte(reply[start:end+1]), &summary); err != nil {
		return types.DocumentSummary{}, fmt.Errorf("parsing summary JSON: %w", err)
	}
	if summary.ConciseSummary == "" {
		return types.DocumentSummary{}, fmt.Errorf("summary JSON has no concise_summary")
	}
	return summary, nil
}

func (s *Summarizer) writeSummaries(summaries []types.DocumentSummary) error {
	if err := os.MkdirAll(s.cfg.SummariesDir, 0o755); err != nil {
		return fmt.Errorf("creating summaries directory: %w", err)
	}
	for _, summary := range summaries {
		data, err := yaml.Marshal(summary)
		if err != nil {
			return fmt.Errorf("marshaling summary for %s: %w", summary.SourceURL, err)
		}
		path := filepath.Join(s.cfg.SummariesDir, summary.SourceID+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing summary file: %w", err)
		}
	}
	return nil
}
