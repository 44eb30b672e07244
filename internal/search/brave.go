// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/blog-engine/internal/httputil"
	"github.com/pdiddy/blog-engine/pkg/types"
)

// braveAPIBase is the Brave Search endpoint. Declared as a var so tests
// can substitute an httptest server.
var braveAPIBase = "https://api.search.brave.com/res/v1/web/search"

// BraveBackend queries the Brave Search API.
type BraveBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *BraveBackend) Name() string { return "brave" }

// Brave Search API JSON structures.
type braveResponse struct {
	Web braveWeb `json:"web"`
}

type braveWeb struct {
	Results []braveResult `json:"results"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Search queries Brave web search and returns results.
func (b *BraveBackend) Search(ctx context.Context, topic string, cfg types.SearchConfig) ([]types.WebResult, error) {
	if cfg.BraveAPIKey == "" {
		return nil, fmt.Errorf("Brave API key not configured")
	}

	params := url.Values{"q": {topic}}
	if cfg.MaxResults > 0 {
		count := cfg.MaxResults
		if count > 20 {
			count = 20
		}
		params.Set("count", fmt.Sprintf("%d", count))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, braveAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", cfg.BraveAPIKey)
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Brave API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Brave API returned HTTP %d", resp.StatusCode)
	}

	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("parsing Brave response: %w", err)
	}

	total := len(br.Web.Results)
	var results []types.WebResult
	for i, r := range br.Web.Results {
		results = append(results, types.WebResult{
			URL:            r.URL,
			Title:          r.Title,
			Snippet:        r.Description,
			Source:         "brave",
			Position:       i + 1,
			RelevanceScore: positionScore(i+1, total),
		})
	}
	return results, nil
}
