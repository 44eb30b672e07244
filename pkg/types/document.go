// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Document holds the readable text extracted from a fetched web page.
type Document struct {
	// ID is a stable slug derived from the page URL.
	ID string `json:"id" yaml:"id"`

	// URL is the address the page was fetched from.
	URL string `json:"url" yaml:"url"`

	// Title is the page or article title.
	Title string `json:"title" yaml:"title"`

	// SiteName is the publishing site, when the page declares one.
	SiteName string `json:"site_name,omitempty" yaml:"site_name,omitempty"`

	// Text is the extracted plain text of the main content.
	Text string `json:"text" yaml:"text"`

	// Excerpt is the page's own description or lead, when available.
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`

	// Language is the ISO 639-1 code of the detected content language.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// WordCount is the number of whitespace-separated words in Text.
	WordCount int `json:"word_count" yaml:"word_count"`

	// FetchedAt records when the page was downloaded.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// DocumentSummary is the structured summary of one source document. The
// field set mirrors what the drafting stage consumes: a compact summary,
// a read on the source's writing style, and the key points and quoted
// expert opinions worth carrying into the article.
type DocumentSummary struct {
	// ConciseSummary condenses the document into a short paragraph.
	ConciseSummary string `json:"concise_summary" yaml:"concise_summary" jsonschema_description:"A short paragraph condensing the document"`

	// WritingStyle characterizes the source's tone and register.
	WritingStyle string `json:"writing_style" yaml:"writing_style" jsonschema_description:"The tone and register of the source text"`

	// KeyPoints lists the document's main claims or takeaways.
	KeyPoints []string `json:"key_points" yaml:"key_points" jsonschema_description:"The main claims or takeaways"`

	// ExpertOpinions lists quoted or attributed viewpoints, when present.
	ExpertOpinions []string `json:"expert_opinions,omitempty" yaml:"expert_opinions,omitempty" jsonschema_description:"Quoted or attributed expert viewpoints"`

	// SourceID links back to the summarized Document.
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty" jsonschema:"-"`

	// SourceURL and SourceTitle carry document provenance.
	SourceURL   string `json:"source_url,omitempty" yaml:"source_url,omitempty" jsonschema:"-"`
	SourceTitle string `json:"source_title,omitempty" yaml:"source_title,omitempty" jsonschema:"-"`
}

// QAPair is one interview question with its generated answer.
type QAPair struct {
	// Question is the interview question about the topic.
	Question string `json:"question" yaml:"question"`

	// Answer is the expert-voice answer grounded in the source summaries.
	Answer string `json:"answer" yaml:"answer"`
}
