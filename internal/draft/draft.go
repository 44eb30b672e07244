// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft turns an outline into the finished article. Each section
// is written separately: the knowledge base is queried for passages
// relevant to the section, the best matches are packed into a token
// budget, and the model writes the section grounded in them.
package draft

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/blog-engine/internal/knowledge"
	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/pkg/types"
)

const (
	defaultLanguage      = "English"
	defaultContextTokens = 2000
)

const draftSystem = `You are a professional blog writer. You write in %s with a
%s tone. You ground everything you write in the reference passages provided
and never invent facts, statistics, or quotes. Write flowing prose in
Markdown; use bold sparingly and bullet lists only where they genuinely help.`

const introPrompt = `Write the introduction for a blog article.

Title: %s
Angle: %s

The article will cover these sections:
%s

Write two or three paragraphs that hook the reader and preview the article.
Do not include the title or any headings.`

const sectionPrompt = `Write the body of the section "%s" for a blog article
titled "%s".

The section should cover:
%s

Reference passages from research:
%s

Write the section in a few paragraphs grounded in the reference passages.
Do not include the section heading; it is added separately. Do not write an
introduction or conclusion for the whole article.`

const conclusionPrompt = `Write the conclusion for a blog article titled "%s"
about "%s". The article covered these sections:
%s

Write one or two closing paragraphs with a clear takeaway for the reader.
Do not include any headings.`

// Retriever supplies reference passages for a section. *knowledge.Store
// satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, opts knowledge.QueryOptions) ([]knowledge.QueryResult, error)
}

// Drafter writes articles from outlines.
type Drafter struct {
	backend llm.Backend
	store   Retriever
	cfg     types.GenerationConfig
	enc     *tiktoken.Tiktoken
}

// New builds a Drafter. The store may be nil, in which case sections are
// written from the outline notes alone.
func New(backend llm.Backend, store Retriever, cfg types.GenerationConfig) (*Drafter, error) {
	if backend == nil {
		return nil, fmt.Errorf("draft: backend is required")
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.Tone == "" {
		cfg.Tone = "conversational"
	}
	if cfg.ContextTokens <= 0 {
		cfg.ContextTokens = defaultContextTokens
	}

	enc, err := tiktoken.EncodingForModel(cfg.Model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("loading token encoding: %w", err)
		}
	}

	return &Drafter{backend: backend, store: store, cfg: cfg, enc: enc}, nil
}

// Draft writes the full article for an outline, section by section, and
// reports progress to w. The returned article carries both the Markdown
// and its rendered HTML.
func (d *Drafter) Draft(ctx context.Context, topic string, outline types.Outline, w io.Writer) (types.Article, error) {
	if outline.Title == "" {
		return types.Article{}, fmt.Errorf("outline has no title")
	}
	if len(outline.Sections) == 0 {
		return types.Article{}, fmt.Errorf("outline has no sections")
	}

	system := fmt.Sprintf(draftSystem, d.cfg.Language, d.cfg.Tone)
	headings := formatHeadings(outline.Sections)

	intro, err := d.complete(ctx, system, fmt.Sprintf(introPrompt, outline.Title, outline.Hook, headings))
	if err != nil {
		return types.Article{}, fmt.Errorf("writing introduction: %w", err)
	}
	fmt.Fprintln(w, "wrote introduction")

	sources := make(map[string]bool)
	var body strings.Builder
	body.WriteString("# " + outline.Title + "\n\n")
	body.WriteString(intro + "\n\n")

	for i, section := range outline.Sections {
		refs, urls := d.sectionContext(ctx, topic, section)
		for _, u := range urls {
			sources[u] = true
		}

		text, err := d.complete(ctx, system,
			fmt.Sprintf(sectionPrompt, section.Heading, outline.Title, formatNotes(section.Notes), refs))
		if err != nil {
			return types.Article{}, fmt.Errorf("writing section %q: %w", section.Heading, err)
		}
		body.WriteString("## " + section.Heading + "\n\n")
		body.WriteString(text + "\n\n")
		fmt.Fprintf(w, "wrote section %d/%d: %s\n", i+1, len(outline.Sections), section.Heading)
	}

	conclusion, err := d.complete(ctx, system, fmt.Sprintf(conclusionPrompt, outline.Title, topic, headings))
	if err != nil {
		return types.Article{}, fmt.Errorf("writing conclusion: %w", err)
	}
	body.WriteString("## Conclusion\n\n")
	body.WriteString(conclusion + "\n")
	fmt.Fprintln(w, "wrote conclusion")

	markdown := body.String()
	html, err := RenderHTML(markdown)
	if err != nil {
		return types.Article{}, err
	}

	article := types.Article{
		ID:        articleID(topic, time.Now().UTC()),
		Topic:     topic,
		Title:     outline.Title,
		Markdown:  markdown,
		HTML:      html,
		Language:  d.cfg.Language,
		WordCount: len(strings.Fields(markdown)),
		Sources:   sortedKeys(sources),
		CreatedAt: time.Now().UTC(),
	}

	if d.cfg.OutputDir != "" {
		if err := d.persist(article); err != nil {
			return types.Article{}, err
		}
	}
	return article, nil
}

func (d *Drafter) complete(ctx context.Context, system, user string) (string, error) {
	reply, err := llm.CompleteWithRetry(ctx, d.backend, llm.Request{
		System: system,
		User:   user,
	}, d.cfg.MaxRetries)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// sectionContext retrieves passages for a section and packs them into the
// context token budget. Retrieval failures degrade to an empty context
// rather than failing the draft.
func (d *Drafter) sectionContext(ctx context.Context, topic string, section types.OutlineSection) (string, []string) {
	if d.store == nil {
		return "(no reference passages)", nil
	}

	query := topic + " " + section.Heading + " " + strings.Join(section.Notes, " ")
	results, err := d.store.Retrieve(ctx, knowledge.QueryOptions{Query: query, MaxResults: 16})
	if err != nil || len(results) == 0 {
		return "(no reference passages)", nil
	}

	var (
		b    strings.Builder
		urls []string
		used int
	)
	for _, r := range results {
		tokens := len(d.enc.Encode(r.Content, nil, nil))
		if used+tokens > d.cfg.ContextTokens && used > 0 {
			break
		}
		used += tokens

		label := r.SourceTitle
		if label == "" {
			label = r.SourceID
		}
		fmt.Fprintf(&b, "[%s] %s\n\n", label, r.Content)
		if r.SourceURL != "" {
			urls = append(urls, r.SourceURL)
		}
	}
	return strings.TrimSpace(b.String()), urls
}

func (d *Drafter) persist(article types.Article) error {
	if err := os.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	mdPath := filepath.Join(d.cfg.OutputDir, article.ID+".md")
	if err := os.WriteFile(mdPath, []byte(article.Markdown), 0o644); err != nil {
		return fmt.Errorf("writing article markdown: %w", err)
	}

	data, err := yaml.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshaling article: %w", err)
	}
	yamlPath := filepath.Join(d.cfg.OutputDir, article.ID+".yaml")
	if err := os.WriteFile(yamlPath, data, 0o644); err != nil {
		return fmt.Errorf("writing article file: %w", err)
	}
	return nil
}

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts article Markdown to HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

func formatHeadings(sections []types.OutlineSection) string {
	var b strings.Builder
	for i, s := range sections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Heading)
	}
	return strings.TrimSpace(b.String())
}

func formatNotes(notes []string) string {
	if len(notes) == 0 {
		return "(writer's choice)"
	}
	var b strings.Builder
	for _, n := range notes {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	return strings.TrimSpace(b.String())
}

// articleID derives a stable slug from the topic and creation time.
func articleID(topic string, at time.Time) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(topic)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "article"
	}
	return slug + "-" + at.Format("20060102-150405")
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
