// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect downloads the pages behind search results and extracts
// their readable text into Documents. Fetches run on a small worker pool
// behind a shared rate limiter; extraction failures skip the page rather
// than abort the run.
package collect

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/time/rate"

	"github.com/pdiddy/blog-engine/internal/httputil"
	"github.com/pdiddy/blog-engine/pkg/types"
)

const (
	defaultMaxPages = 3
	defaultWorkers  = 3
	defaultRate     = 2.0
	defaultMinWords = 80
)

// Collector fetches pages and extracts Documents.
type Collector struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     types.CollectConfig
}

// New builds a Collector from the stage configuration.
func New(cfg types.CollectConfig) *Collector {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRate
	}
	return &Collector{
		client:  httputil.NewClient(cfg.Timeout),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cfg:     cfg,
	}
}

// PrepareURLs takes ranked search results and returns the top-N distinct,
// non-empty URLs to fetch. Zero usable URLs is an error: it means the
// search stage produced nothing worth scraping.
func PrepareURLs(results []types.WebResult, maxPages int) ([]string, error) {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	seen := make(map[string]bool)
	var urls []string
	for _, r := range results {
		u := strings.TrimSpace(r.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
		if len(urls) == maxPages {
			break
		}
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no usable URLs in search results")
	}
	return urls, nil
}

// Summary holds counts from a collection run.
type Summary struct {
	Fetched int
	Skipped int
	Failed  int
}

// CollectAll fetches every URL on a worker pool, extracts readable text,
// and returns the resulting Documents in input order. Pages that fail to
// fetch or yield too little text are reported to w and skipped. Zero
// successful documents is an error.
func (c *Collector) CollectAll(ctx context.Context, urls []string, w io.Writer) ([]types.Document, Summary, error) {
	workers := c.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(urls) {
		workers = len(urls)
	}

	type job struct {
		idx int
		url string
	}
	type outcome struct {
		idx int
		doc *types.Document
		err error
	}

	jobs := make(chan job, len(urls))
	outcomes := make(chan outcome, len(urls))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				doc, err := c.collectOne(ctx, j.url)
				outcomes <- outcome{idx: j.idx, doc: doc, err: err}
			}
		}()
	}

	for i, u := range urls {
		jobs <- job{idx: i, url: u}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	docs := make([]*types.Document, len(urls))
	var summary Summary
	for o := range outcomes {
		if o.err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", urls[o.idx], o.err)
			summary.Failed++
			continue
		}
		if o.doc == nil {
			fmt.Fprintf(w, "skipped %s (too little text)\n", urls[o.idx])
			summary.Skipped++
			continue
		}
		fmt.Fprintf(w, "fetched %s (%d words)\n", o.doc.URL, o.doc.WordCount)
		docs[o.idx] = o.doc
		summary.Fetched++
	}

	var out []types.Document
	for _, d := range docs {
		if d != nil {
			out = append(out, *d)
		}
	}

	if len(out) == 0 {
		return nil, summary, fmt.Errorf("no pages could be collected from %d URLs", len(urls))
	}

	if c.cfg.DocumentsDir != "" {
		if err := writeDocuments(c.cfg.DocumentsDir, out); err != nil {
			return nil, summary, err
		}
	}

	return out, summary, nil
}

// collectOne fetches a single page and extracts its Document. A nil
// Document with nil error means the page was below the word floor.
func (c *Collector) collectOne(ctx context.Context, pageURL string) (*types.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned HTTP %d", resp.StatusCode)
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	doc, err := Extract(pageURL, string(html))
	if err != nil {
		return nil, err
	}

	minWords := c.cfg.MinWords
	if minWords <= 0 {
		minWords = defaultMinWords
	}
	if doc.WordCount < minWords {
		return nil, nil
	}

	doc.FetchedAt = time.Now().UTC()
	return doc, nil
}

// writeDocuments persists each Document as YAML under dir.
func writeDocuments(dir string, docs []types.Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating documents directory: %w", err)
	}
	for _, d := range docs {
		data, err := yaml.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshaling document %s: %w", d.ID, err)
		}
		path := filepath.Join(dir, d.ID+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// DocumentID derives a stable slug from a page URL. The ID is the first
// 12 hex characters of SHA-256(url).
func DocumentID(pageURL string) string {
	h := sha256.Sum256([]byte(pageURL))
	return fmt.Sprintf("%x", h)[:12]
}
