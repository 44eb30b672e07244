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

// serpAPIBase is the SerpAPI search endpoint. Declared as a var so tests
// can substitute an httptest server.
var serpAPIBase = "https://serpapi.com/search.json"

// SerpAPIBackend queries Google through SerpAPI.
type SerpAPIBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *SerpAPIBackend) Name() string { return "serpapi" }

// serpAPIResponse is the subset of the SerpAPI payload this stage reads.
type serpAPIResponse struct {
	Error          string          `json:"error"`
	OrganicResults []organicResult `json:"organic_results"`
}

type organicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

// Search queries SerpAPI for Google organic results. An error field in
// the payload or an empty organic result list is surfaced as an error,
// since both signal a bad key or an unusable query.
func (b *SerpAPIBackend) Search(ctx context.Context, topic string, cfg types.SearchConfig) ([]types.WebResult, error) {
	if cfg.SerpAPIKey == "" {
		return nil, fmt.Errorf("SerpAPI key not configured")
	}

	params := url.Values{
		"q":       {topic},
		"api_key": {cfg.SerpAPIKey},
	}
	if cfg.Location != "" {
		params.Set("location", cfg.Location)
	}
	if cfg.MaxResults > 0 {
		params.Set("num", fmt.Sprintf("%d", cfg.MaxResults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("SerpAPI request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SerpAPI returned HTTP %d", resp.StatusCode)
	}

	var sr serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing SerpAPI response: %w", err)
	}

	if sr.Error != "" {
		return nil, fmt.Errorf("SerpAPI error: %s", sr.Error)
	}
	if len(sr.OrganicResults) == 0 {
		return nil, fmt.Errorf("no organic results: check the API key and query")
	}

	total := len(sr.OrganicResults)
	results := make([]types.WebResult, 0, total)
	for i, or := range sr.OrganicResults {
		pos := or.Position
		if pos <= 0 {
			pos = i + 1
		}
		results = append(results, types.WebResult{
			URL:            or.Link,
			Title:          or.Title,
			Snippet:        or.Snippet,
			Source:         "serpapi",
			Position:       pos,
			RelevanceScore: positionScore(pos, total),
		})
	}
	return results, nil
}
