// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/pkg/types"
)

const outlineJSON = `{
  "title": "Why Solar Panels Keep Getting Cheaper",
  "hook": "The price of going solar has quietly collapsed.",
  "sections": [
    {"heading": "The Cost Curve", "notes": ["80% drop since 2010"]},
    {"heading": "Where the Money Goes Now", "notes": ["labor dominates"]},
    {"heading": "What Comes Next", "notes": ["storage bottleneck"]}
  ]
}`

func testConfig(min, max int) types.OutlineConfig {
	cfg := types.OutlineConfig{MinSections: min, MaxSections: max}
	cfg.Model = "gpt-4o"
	return cfg
}

func TestPlanParsesOutline(t *testing.T) {
	mock := &llm.Mock{Responses: []string{outlineJSON}}
	p, err := New(mock, testConfig(2, 5))
	require.NoError(t, err)

	outline, err := p.Plan(context.Background(), "solar panels", "notes",
		[]types.QAPair{{Question: "Q?", Answer: "A."}})
	require.NoError(t, err)

	assert.Equal(t, "Why Solar Panels Keep Getting Cheaper", outline.Title)
	require.Len(t, outline.Sections, 3)
	assert.Equal(t, "The Cost Curve", outline.Sections[0].Heading)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].User, `"solar panels"`)
	assert.Contains(t, reqs[0].User, "Q: Q?")
	assert.Contains(t, reqs[0].User, "sections")
}

func TestPlanRejectsTooFewSections(t *testing.T) {
	p, err := New(&llm.Mock{Responses: []string{outlineJSON}}, testConfig(5, 8))
	require.NoError(t, err)

	_, err = p.Plan(context.Background(), "solar panels", "notes", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 5")
}

func TestPlanTrimsExtraSections(t *testing.T) {
	p, err := New(&llm.Mock{Responses: []string{outlineJSON}}, testConfig(1, 2))
	require.NoError(t, err)

	outline, err := p.Plan(context.Background(), "solar panels", "notes", nil)
	require.NoError(t, err)
	assert.Len(t, outline.Sections, 2)
}

func TestPlanRejectsReplyWithoutJSON(t *testing.T) {
	p, err := New(&llm.Mock{Responses: []string{"I would structure it in three parts."}}, testConfig(2, 5))
	require.NoError(t, err)

	_, err = p.Plan(context.Background(), "solar panels", "notes", nil)
	require.Error(t, err)
}

func TestNewRejectsInvertedBounds(t *testing.T) {
	_, err := New(&llm.Mock{Responses: []string{"{}"}}, testConfig(6, 3))
	require.Error(t, err)
}

func TestParseOutlineRequiresTitle(t *testing.T) {
	_, err := parseOutline(`{"sections": []}`)
	require.Error(t, err)
}
