// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imagegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/blog-engine/pkg/types"
)

type mockImages struct {
	png     []byte
	err     error
	prompts []string
}

func (m *mockImages) Name() string { return "mock" }

func (m *mockImages) Generate(_ context.Context, prompt string) ([]byte, error) {
	m.prompts = append(m.prompts, prompt)
	return m.png, m.err
}

func testArticle() types.Article {
	return types.Article{
		ID:    "solar-panels-20260830-100000",
		Topic: "solar panels",
		Title: "Why Solar Panels Keep Getting Cheaper",
	}
}

func TestCoverImageWritesFile(t *testing.T) {
	dir := t.TempDir()
	mock := &mockImages{png: []byte("fake png bytes")}
	g := NewWithBackend(mock, types.ImageConfig{OutputDir: dir})

	path, err := g.CoverImage(context.Background(), testArticle())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "solar-panels-20260830-100000.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), data)

	require.Len(t, mock.prompts, 1)
	assert.Contains(t, mock.prompts[0], "Why Solar Panels Keep Getting Cheaper")
	assert.Contains(t, mock.prompts[0], "no text or lettering")
}

func TestCoverImageBackendError(t *testing.T) {
	mock := &mockImages{err: fmt.Errorf("rate limited")}
	g := NewWithBackend(mock, types.ImageConfig{OutputDir: t.TempDir()})

	_, err := g.CoverImage(context.Background(), testArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCoverImageEmptyResponse(t *testing.T) {
	g := NewWithBackend(&mockImages{}, types.ImageConfig{OutputDir: t.TempDir()})

	_, err := g.CoverImage(context.Background(), testArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty image")
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(types.ImageConfig{})
	require.Error(t, err)
}

func TestCoverPromptFallsBackToTopic(t *testing.T) {
	prompt := CoverPrompt(types.Article{Topic: "heat pumps"})
	assert.Contains(t, prompt, "heat pumps")
}
