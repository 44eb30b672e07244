// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/pkg/types"
)

const revisedArticle = "# Why Solar Panels Keep Getting Cheaper\n\nTighter introduction.\n\n## Conclusion\n\nDone."

func sessionArticle() types.Article {
	return types.Article{
		ID:       "solar-panels-20260830-100000",
		Topic:    "solar panels",
		Title:    "Why Solar Panels Keep Getting Cheaper",
		Markdown: "# Why Solar Panels Keep Getting Cheaper\n\nOriginal introduction.",
	}
}

func TestReviseUpdatesArticle(t *testing.T) {
	mock := &llm.Mock{Responses: []string{revisedArticle}}
	d, err := New(mock, nil, testConfig(""))
	require.NoError(t, err)

	session := d.NewSession(sessionArticle())
	article, err := session.Revise(context.Background(), "tighten the introduction")
	require.NoError(t, err)

	assert.Equal(t, revisedArticle, article.Markdown)
	assert.Contains(t, article.HTML, "<h1>Why Solar Panels Keep Getting Cheaper</h1>")
	assert.Equal(t, "solar-panels-20260830-100000", article.ID)
	assert.Positive(t, article.WordCount)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].User, "Original introduction")
	assert.Contains(t, reqs[0].User, "tighten the introduction")
}

func TestReviseThreadsHistory(t *testing.T) {
	mock := &llm.Mock{Responses: []string{revisedArticle, revisedArticle}}
	d, err := New(mock, nil, testConfig(""))
	require.NoError(t, err)

	session := d.NewSession(sessionArticle())
	_, err = session.Revise(context.Background(), "first round")
	require.NoError(t, err)
	_, err = session.Revise(context.Background(), "second round")
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	require.Len(t, reqs[1].History, 2)
	assert.Equal(t, llm.RoleAssistant, reqs[1].History[1].Role)
	assert.Contains(t, reqs[1].History[0].Content, "first round")
}

func TestReviseStripsCodeFence(t *testing.T) {
	fenced := "```markdown\n" + revisedArticle + "\n```"
	d, err := New(&llm.Mock{Responses: []string{fenced}}, nil, testConfig(""))
	require.NoError(t, err)

	article, err := d.NewSession(sessionArticle()).Revise(context.Background(), "feedback")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(article.Markdown, "# "))
}

func TestReviseRejectsEmptyFeedback(t *testing.T) {
	d, err := New(&llm.Mock{Responses: []string{revisedArticle}}, nil, testConfig(""))
	require.NoError(t, err)

	_, err = d.NewSession(sessionArticle()).Revise(context.Background(), "   ")
	require.Error(t, err)
}

func TestReviseRejectsPartialReply(t *testing.T) {
	d, err := New(&llm.Mock{Responses: []string{"Sure, here are my thoughts on the article."}}, nil, testConfig(""))
	require.NoError(t, err)

	_, err = d.NewSession(sessionArticle()).Revise(context.Background(), "feedback")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complete article")
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, "# A", stripFence("```\n# A\n```"))
	assert.Equal(t, "# A", stripFence("```markdown\n# A\n```"))
	assert.Equal(t, "# A", stripFence("# A"))
}

func TestFirstTitle(t *testing.T) {
	assert.Equal(t, "New Title", firstTitle("intro\n# New Title\nbody", "old"))
	assert.Equal(t, "old", firstTitle("no heading here", "old"))
}
