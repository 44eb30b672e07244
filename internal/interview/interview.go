// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package interview deepens the research by interviewing the model as a
// subject-matter expert. It first derives questions from the document
// summaries, then asks them one at a time over a shared conversation so
// later answers can build on earlier ones.
package interview

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/pkg/types"
)

const (
	defaultQuestions    = 5
	defaultMemoryTokens = 4000
)

const interviewSystem = `You are a subject-matter expert being interviewed for a
blog article about "%s". Answer each question in a few concise paragraphs,
grounding your answers in the research notes below. If the notes do not cover
something, say so rather than inventing facts.

Research notes:
%s`

const questionsPrompt = `Based on the research notes below, write %d interview
questions for a subject-matter expert on "%s". The questions should cover the
angles a reader would care about and must be answerable from the notes.
Write one question per line with no numbering or extra text.

Research notes:
%s`

// Interviewer runs the expert Q&A stage.
type Interviewer struct {
	backend llm.Backend
	cfg     types.InterviewConfig
}

// New builds an Interviewer.
func New(backend llm.Backend, cfg types.InterviewConfig) (*Interviewer, error) {
	if backend == nil {
		return nil, fmt.Errorf("interview: backend is required")
	}
	if cfg.Questions <= 0 {
		cfg.Questions = defaultQuestions
	}
	if cfg.MemoryTokens <= 0 {
		cfg.MemoryTokens = defaultMemoryTokens
	}
	return &Interviewer{backend: backend, cfg: cfg}, nil
}

// Conduct generates interview questions from the summaries and asks each
// one in turn, threading the conversation so the expert can refer back to
// earlier answers. Progress is reported to w.
func (iv *Interviewer) Conduct(ctx context.Context, topic string, summaries []types.DocumentSummary, w io.Writer) ([]types.QAPair, error) {
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no summaries to interview about")
	}

	notes := FormatNotes(summaries)
	questions, err := iv.GenerateQuestions(ctx, topic, notes)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "generated %d interview questions\n", len(questions))

	mem, err := llm.NewMemory(iv.cfg.Model, iv.cfg.MemoryTokens)
	if err != nil {
		return nil, err
	}
	system := fmt.Sprintf(interviewSystem, topic, notes)

	pairs := make([]types.QAPair, 0, len(questions))
	for i, question := range questions {
		answer, err := llm.CompleteWithRetry(ctx, iv.backend, llm.Request{
			System:  system,
			History: mem.Messages(),
			User:    question,
		}, iv.cfg.MaxRetries)
		if err != nil {
			return nil, fmt.Errorf("answering question %d: %w", i+1, err)
		}
		mem.Add(llm.RoleUser, question)
		mem.Add(llm.RoleAssistant, answer)
		pairs = append(pairs, types.QAPair{Question: question, Answer: answer})
		fmt.Fprintf(w, "answered %d/%d: %s\n", i+1, len(questions), question)
	}
	return pairs, nil
}

// GenerateQuestions asks the model for interview questions and parses
// them from the reply, one per line.
func (iv *Interviewer) GenerateQuestions(ctx context.Context, topic, notes string) ([]string, error) {
	reply, err := llm.CompleteWithRetry(ctx, iv.backend, llm.Request{
		User: fmt.Sprintf(questionsPrompt, iv.cfg.Questions, topic, notes),
	}, iv.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("generating questions: %w", err)
	}

	questions := parseQuestions(reply, iv.cfg.Questions)
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in model reply")
	}
	return questions, nil
}

// FormatNotes renders summaries as the plain-text research notes embedded
// in interview prompts.
func FormatNotes(summaries []types.DocumentSummary) string {
	var b strings.Builder
	for i, s := range summaries {
		fmt.Fprintf(&b, "Source %d: %s (%s)\n", i+1, s.SourceTitle, s.SourceURL)
		fmt.Fprintf(&b, "Summary: %s\n", s.ConciseSummary)
		for _, p := range s.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		for _, op := range s.ExpertOpinions {
			fmt.Fprintf(&b, "Opinion: %s\n", op)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// parseQuestions extracts up to max questions from a reply, stripping any
// numbering or bullets the model added despite instructions.
func parseQuestions(reply string, max int) []string {
	var questions []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.)- *")
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "?") {
			continue
		}
		questions = append(questions, line)
		if len(questions) == max {
			break
		}
	}
	return questions
}
