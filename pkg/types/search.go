// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the blog-engine pipeline.
package types

// WebResult represents a single hit returned by a web search backend.
type WebResult struct {
	// URL is the landing page address.
	URL string `json:"url" yaml:"url"`

	// Title is the result title as returned by the backend.
	Title string `json:"title" yaml:"title"`

	// Snippet is the short text excerpt shown with the result.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Source identifies which backend found this result (e.g. "serpapi", "brave").
	Source string `json:"source" yaml:"source"`

	// Position is the 1-based rank within the backend's result list.
	Position int `json:"position" yaml:"position"`

	// RelevanceScore is a value between 0.0 and 1.0 derived from Position.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}
