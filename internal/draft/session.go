// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/pkg/types"
)

const reviseSystem = `You are a professional blog editor revising an article in
%s. Apply the author's feedback while keeping everything else intact: the
structure, the facts, and the parts the feedback does not touch. Return the
complete revised article in Markdown, starting with the "# " title line.
Return only the article, no commentary.`

const revisePrompt = `Here is the current article:

%s

Feedback to apply:
%s`

// Session holds an article through revision rounds. Feedback and
// revisions are threaded through a conversation so later feedback can
// refer to earlier rounds.
type Session struct {
	drafter *Drafter
	article types.Article
	history []llm.Message
}

// NewSession starts a revision session over a drafted article.
func (d *Drafter) NewSession(article types.Article) *Session {
	return &Session{drafter: d, article: article}
}

// Article returns the current state of the article.
func (s *Session) Article() types.Article {
	return s.article
}

// Revise applies one round of feedback and returns the updated article.
// The article's Markdown, HTML, and word count are replaced; its identity
// and provenance fields are kept.
func (s *Session) Revise(ctx context.Context, feedback string) (types.Article, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return types.Article{}, fmt.Errorf("revision feedback is empty")
	}

	user := fmt.Sprintf(revisePrompt, s.article.Markdown, feedback)
	reply, err := llm.CompleteWithRetry(ctx, s.drafter.backend, llm.Request{
		System:  fmt.Sprintf(reviseSystem, s.drafter.cfg.Language),
		History: s.history,
		User:    user,
	}, s.drafter.cfg.MaxRetries)
	if err != nil {
		return types.Article{}, fmt.Errorf("revising article: %w", err)
	}

	markdown := strings.TrimSpace(stripFence(reply))
	if !strings.HasPrefix(markdown, "# ") {
		return types.Article{}, fmt.Errorf("revision did not return a complete article")
	}

	html, err := RenderHTML(markdown)
	if err != nil {
		return types.Article{}, err
	}

	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Content: user},
		llm.Message{Role: llm.RoleAssistant, Content: markdown},
	)

	s.article.Markdown = markdown
	s.article.HTML = html
	s.article.WordCount = len(strings.Fields(markdown))
	s.article.Title = firstTitle(markdown, s.article.Title)
	s.article.CreatedAt = time.Now().UTC()

	if s.drafter.cfg.OutputDir != "" {
		if err := s.drafter.persist(s.article); err != nil {
			return types.Article{}, err
		}
	}
	return s.article, nil
}

// stripFence removes a wrapping Markdown code fence, which models
// sometimes add around the whole article.
func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return text
	}
	lines := strings.Split(t, "\n")
	if len(lines) < 2 {
		return text
	}
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		return strings.Join(lines[1:len(lines)-1], "\n")
	}
	return text
}

// firstTitle extracts the H1 title from Markdown, falling back when the
// article has none.
func firstTitle(markdown, fallback string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}
