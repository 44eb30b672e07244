// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries hosted web search APIs and returns unified,
// deduplicated results for a topic. Each backend (SerpAPI, Brave)
// implements the Backend interface per the Strategy pattern.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/blog-engine/internal/httputil"
	"github.com/pdiddy/blog-engine/pkg/types"
)

// Backend searches a single web search API.
type Backend interface {
	Name() string
	Search(ctx context.Context, topic string, cfg types.SearchConfig) ([]types.WebResult, error)
}

// Backends assembles the enabled search backends from configuration,
// all sharing one HTTP client.
func Backends(cfg types.SearchConfig) []Backend {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client := httputil.NewClient(timeout)
	var backends []Backend
	if cfg.EnableSerpAPI {
		backends = append(backends, &SerpAPIBackend{Client: client})
	}
	if cfg.EnableBrave {
		backends = append(backends, &BraveBackend{Client: client})
	}
	return backends
}

// Output holds the merged results and per-backend failures.
type Output struct {
	Results       []types.WebResult
	DupsRemoved   int
	BackendErrors []string
}

// URLs returns the result URLs in rank order.
func (o Output) URLs() []string {
	urls := make([]string, 0, len(o.Results))
	for _, r := range o.Results {
		urls = append(urls, r.URL)
	}
	return urls
}

// Search fans the topic out to all backends concurrently, deduplicates
// by normalized URL, ranks by relevance, and caps at MaxResults. A topic
// with no searchable text is an error; so is a run where every backend
// fails.
func Search(ctx context.Context, topic string, backends []Backend, cfg types.SearchConfig, w io.Writer) (Output, error) {
	if strings.TrimSpace(topic) == "" {
		return Output{}, fmt.Errorf("topic is empty: provide a subject to research")
	}
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no search backends configured")
	}

	type backendResult struct {
		results []types.WebResult
		err     error
		name    string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for _, b := range backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			results, err := b.Search(ctx, topic, cfg)
			ch <- backendResult{results: results, err: err, name: b.Name()}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.WebResult
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			msg := fmt.Sprintf("%s: %v", br.name, br.err)
			backendErrors = append(backendErrors, msg)
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.results...)
	}

	if len(all) == 0 && len(backendErrors) == len(backends) {
		return Output{}, fmt.Errorf("all search backends failed: %s", strings.Join(backendErrors, "; "))
	}

	deduped, removed := deduplicate(all)

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RelevanceScore > deduped[j].RelevanceScore
	})

	if cfg.MaxResults > 0 && len(deduped) > cfg.MaxResults {
		deduped = deduped[:cfg.MaxResults]
	}

	return Output{
		Results:       deduped,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// deduplicate merges results that share a normalized URL, keeping the
// higher score and combining source labels.
func deduplicate(results []types.WebResult) ([]types.WebResult, int) {
	seen := make(map[string]int) // normalized URL → index in deduped
	var deduped []types.WebResult
	removed := 0

	for _, r := range results {
		key := normalizeURL(r.URL)
		if key == "" {
			removed++
			continue
		}
		if idx, ok := seen[key]; ok {
			mergeInto(&deduped[idx], r)
			removed++
			continue
		}
		seen[key] = len(deduped)
		deduped = append(deduped, r)
	}
	return deduped, removed
}

// mergeInto fills empty fields of dst from src and keeps the higher score.
func mergeInto(dst *types.WebResult, src types.WebResult) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if dst.Snippet == "" && src.Snippet != "" {
		dst.Snippet = src.Snippet
	}
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
	}
	if dst.Source != src.Source && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// normalizeURL canonicalizes a URL for dedup: lowercase scheme and host,
// strip the fragment, trailing slash, and a leading "www.".
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimSuffix(u.Path, "/")
	s := strings.ToLower(u.Scheme) + "://" + host + path
	if u.RawQuery != "" {
		s += "?" + u.RawQuery
	}
	return s
}

// positionScore derives a relevance score from a 1-based rank position.
// The first result of a backend scores 1.0, later ones decay toward 0.1.
func positionScore(position, total int) float64 {
	if total <= 1 || position <= 1 {
		return 1.0
	}
	return 1.0 - float64(position-1)/float64(total-1)*0.9
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-50s  %-6s  %s\n", "Rank", "Title", "URL", "Score", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, r := range out.Results {
		title := truncate(r.Title, 50)
		u := truncate(r.URL, 50)
		fmt.Fprintf(w, "%-4d  %-50s  %-50s  %-6.2f  %s\n", i+1, title, u, r.RelevanceScore, r.Source)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Results))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Results)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
