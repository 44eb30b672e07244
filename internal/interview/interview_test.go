// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interview

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/pkg/types"
)

func testSummaries() []types.DocumentSummary {
	return []types.DocumentSummary{
		{
			ConciseSummary: "Solar panel costs fell 80% since 2010.",
			KeyPoints:      []string{"Module prices dropped", "Labor is now the biggest cost"},
			ExpertOpinions: []string{"Dr. Reyes: 'Storage is the next bottleneck.'"},
			SourceTitle:    "Solar Panel Costs",
			SourceURL:      "https://example.com/solar",
		},
	}
}

func testConfig(questions int) types.InterviewConfig {
	cfg := types.InterviewConfig{Questions: questions, MemoryTokens: 2000}
	cfg.Model = "gpt-4o"
	return cfg
}

func TestConductThreadsConversation(t *testing.T) {
	mock := &llm.Mock{Responses: []string{
		"What drove the cost decline?\nIs rooftop solar worth it in 2026?",
		"Module prices and scale drove the decline.",
		"Yes, for most households with suitable roofs.",
	}}

	iv, err := New(mock, testConfig(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	pairs, err := iv.Conduct(context.Background(), "solar panels", testSummaries(), &buf)
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	assert.Equal(t, "What drove the cost decline?", pairs[0].Question)
	assert.Equal(t, "Module prices and scale drove the decline.", pairs[0].Answer)

	reqs := mock.Requests()
	require.Len(t, reqs, 3)

	// The second answer request carries the first Q&A as history.
	second := reqs[2]
	require.Len(t, second.History, 2)
	assert.Equal(t, llm.RoleUser, second.History[0].Role)
	assert.Equal(t, pairs[0].Question, second.History[0].Content)
	assert.Equal(t, llm.RoleAssistant, second.History[1].Role)
	assert.Contains(t, second.System, "solar panels")
	assert.Contains(t, second.System, "Solar panel costs fell 80%")
}

func TestConductRequiresSummaries(t *testing.T) {
	iv, err := New(&llm.Mock{Responses: []string{"ok"}}, testConfig(2))
	require.NoError(t, err)

	_, err = iv.Conduct(context.Background(), "solar panels", nil, &bytes.Buffer{})
	require.Error(t, err)
}

func TestGenerateQuestionsRejectsEmptyReply(t *testing.T) {
	iv, err := New(&llm.Mock{Responses: []string{"I cannot help with that."}}, testConfig(3))
	require.NoError(t, err)

	_, err = iv.GenerateQuestions(context.Background(), "solar panels", "notes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no questions")
}

func TestParseQuestionsStripsNumbering(t *testing.T) {
	reply := "1. What is net metering?\n2) How long do panels last?\n- Are batteries worth it?\n\nSome closing remark."
	questions := parseQuestions(reply, 5)
	assert.Equal(t, []string{
		"What is net metering?",
		"How long do panels last?",
		"Are batteries worth it?",
	}, questions)
}

func TestParseQuestionsCapsAtMax(t *testing.T) {
	reply := "One?\nTwo?\nThree?\nFour?"
	assert.Len(t, parseQuestions(reply, 2), 2)
}

func TestFormatNotesIncludesSources(t *testing.T) {
	notes := FormatNotes(testSummaries())
	assert.Contains(t, notes, "Source 1: Solar Panel Costs")
	assert.Contains(t, notes, "- Module prices dropped")
	assert.Contains(t, notes, "Opinion: Dr. Reyes")
}
