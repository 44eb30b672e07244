// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PassageKind classifies where a knowledge base passage came from.
type PassageKind string

const (
	// PassageDocument is a chunk of extracted page text.
	PassageDocument PassageKind = "document"

	// PassageSummary is a document's concise summary.
	PassageSummary PassageKind = "summary"

	// PassageKeyPoint is a single key point from a summary.
	PassageKeyPoint PassageKind = "key_point"

	// PassageOpinion is a quoted expert opinion from a summary.
	PassageOpinion PassageKind = "expert_opinion"

	// PassageQA is one interview question and its answer.
	PassageQA PassageKind = "qa"
)

// Passage is one retrievable unit of research text in the knowledge base.
type Passage struct {
	// ID uniquely identifies the passage.
	ID string `json:"id" yaml:"id"`

	// Kind classifies the passage source.
	Kind PassageKind `json:"kind" yaml:"kind"`

	// Content is the passage text.
	Content string `json:"content" yaml:"content"`

	// SourceID links to the Document the passage came from. Interview
	// passages use a topic-derived ID instead.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Position orders passages within one source.
	Position int `json:"position" yaml:"position"`
}
