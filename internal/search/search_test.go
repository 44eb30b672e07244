// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/blog-engine/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	name    string
	results []types.WebResult
	err     error
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Search(_ context.Context, _ string, _ types.SearchConfig) ([]types.WebResult, error) {
	return m.results, m.err
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxResults: 10,
		Location:   "Austin,Texas",
	}
}

// --- Search ---

func TestSearchEmptyTopic(t *testing.T) {
	_, err := Search(context.Background(), "   ", []Backend{&mockBackend{name: "a"}}, testCfg(), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "topic is empty") {
		t.Errorf("err = %v, want topic is empty", err)
	}
}

func TestSearchNoBackends(t *testing.T) {
	_, err := Search(context.Background(), "solar panels", nil, testCfg(), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no search backends") {
		t.Errorf("err = %v, want no search backends", err)
	}
}

func TestSearchMergesBackends(t *testing.T) {
	a := &mockBackend{name: "serpapi", results: []types.WebResult{
		{URL: "https://example.com/one", Title: "One", Source: "serpapi", RelevanceScore: 1.0},
		{URL: "https://example.com/two", Title: "Two", Source: "serpapi", RelevanceScore: 0.8},
	}}
	b := &mockBackend{name: "brave", results: []types.WebResult{
		{URL: "https://other.org/page", Title: "Other", Source: "brave", RelevanceScore: 0.9},
	}}

	out, err := Search(context.Background(), "solar panels", []Backend{a, b}, testCfg(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(out.Results))
	}
	// Sorted by relevance.
	if out.Results[0].URL != "https://example.com/one" {
		t.Errorf("top result = %q, want example.com/one", out.Results[0].URL)
	}
}

func TestSearchPartialBackendFailure(t *testing.T) {
	good := &mockBackend{name: "serpapi", results: []types.WebResult{
		{URL: "https://example.com/one", Title: "One", Source: "serpapi", RelevanceScore: 1.0},
	}}
	bad := &mockBackend{name: "brave", err: errors.New("HTTP 401")}

	var buf bytes.Buffer
	out, err := Search(context.Background(), "solar", []Backend{good, bad}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(out.Results) != 1 {
		t.Errorf("len(Results) = %d, want 1", len(out.Results))
	}
	if len(out.BackendErrors) != 1 {
		t.Errorf("len(BackendErrors) = %d, want 1", len(out.BackendErrors))
	}
	if !strings.Contains(buf.String(), "warning: backend brave failed") {
		t.Errorf("progress output missing warning: %q", buf.String())
	}
}

func TestSearchAllBackendsFailed(t *testing.T) {
	a := &mockBackend{name: "serpapi", err: errors.New("bad key")}
	b := &mockBackend{name: "brave", err: errors.New("quota")}

	_, err := Search(context.Background(), "solar", []Backend{a, b}, testCfg(), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "all search backends failed") {
		t.Errorf("err = %v, want all search backends failed", err)
	}
}

func TestSearchCapsMaxResults(t *testing.T) {
	var results []types.WebResult
	for i := 0; i < 15; i++ {
		results = append(results, types.WebResult{
			URL:            "https://example.com/" + string(rune('a'+i)),
			RelevanceScore: 1.0 - float64(i)*0.01,
		})
	}
	b := &mockBackend{name: "serpapi", results: results}

	cfg := testCfg()
	cfg.MaxResults = 5

	out, err := Search(context.Background(), "solar", []Backend{b}, cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(out.Results) != 5 {
		t.Errorf("len(Results) = %d, want 5", len(out.Results))
	}
}

// --- Deduplication ---

func TestDeduplicateByNormalizedURL(t *testing.T) {
	results := []types.WebResult{
		{URL: "https://www.example.com/post/", Title: "A", Source: "serpapi", RelevanceScore: 0.9},
		{URL: "https://example.com/post", Title: "", Snippet: "from brave", Source: "brave", RelevanceScore: 0.7},
		{URL: "https://example.com/other", Title: "B", Source: "serpapi", RelevanceScore: 0.5},
	}

	deduped, removed := deduplicate(results)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(deduped) != 2 {
		t.Fatalf("len(deduped) = %d, want 2", len(deduped))
	}
	// Merged result keeps higher score, fills snippet, combines sources.
	if deduped[0].RelevanceScore != 0.9 {
		t.Errorf("merged score = %f, want 0.9", deduped[0].RelevanceScore)
	}
	if deduped[0].Snippet != "from brave" {
		t.Errorf("merged snippet = %q", deduped[0].Snippet)
	}
	if !strings.Contains(deduped[0].Source, "brave") {
		t.Errorf("merged source = %q, should contain both backends", deduped[0].Source)
	}
}

func TestDeduplicateDropsUnparsableURLs(t *testing.T) {
	results := []types.WebResult{
		{URL: "not a url"},
		{URL: "https://example.com/ok"},
	}

	deduped, removed := deduplicate(results)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(deduped) != 1 {
		t.Errorf("len(deduped) = %d, want 1", len(deduped))
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.Example.com/Post/", "https://example.com/Post"},
		{"https://example.com/post#section", "https://example.com/post"},
		{"https://example.com/q?a=1", "https://example.com/q?a=1"},
		{"garbage", ""},
	}
	for _, tt := range tests {
		if got := normalizeURL(tt.in); got != tt.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Ranking ---

func TestPositionScore(t *testing.T) {
	if s := positionScore(1, 10); s != 1.0 {
		t.Errorf("first position score = %f, want 1.0", s)
	}
	if s := positionScore(10, 10); s < 0.09 || s > 0.11 {
		t.Errorf("last position score = %f, want ~0.1", s)
	}
	if s := positionScore(1, 1); s != 1.0 {
		t.Errorf("single result score = %f, want 1.0", s)
	}
}

// --- Formatting ---

func TestFormatTable(t *testing.T) {
	out := Output{
		Results: []types.WebResult{
			{URL: "https://example.com/one", Title: "First Result", Source: "serpapi", RelevanceScore: 1.0},
		},
		DupsRemoved: 2,
	}

	var buf bytes.Buffer
	FormatTable(out, &buf)
	s := buf.String()
	if !strings.Contains(s, "First Result") {
		t.Errorf("table missing title: %q", s)
	}
	if !strings.Contains(s, "(2 duplicates removed)") {
		t.Errorf("table missing dedup count: %q", s)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Output{}, &buf)
	if !strings.Contains(buf.String(), "No results found.") {
		t.Errorf("empty table output = %q", buf.String())
	}
}

func TestBackends(t *testing.T) {
	if got := Backends(types.SearchConfig{}); len(got) != 0 {
		t.Errorf("expected no backends, got %d", len(got))
	}

	cfg := types.SearchConfig{EnableSerpAPI: true, EnableBrave: true}
	backends := Backends(cfg)
	if len(backends) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(backends))
	}
	if backends[0].Name() != "serpapi" || backends[1].Name() != "brave" {
		t.Errorf("backend names = %s, %s", backends[0].Name(), backends[1].Name())
	}
}
