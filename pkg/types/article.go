// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OutlineSection describes one planned section of the article.
type OutlineSection struct {
	// Heading is the section title.
	Heading string `json:"heading" yaml:"heading" jsonschema_description:"The section heading"`

	// Notes lists the points the section should cover.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty" jsonschema_description:"Bullet points the section should cover"`
}

// Outline is the planned structure of the article.
type Outline struct {
	// Title is the proposed article title.
	Title string `json:"title" yaml:"title" jsonschema_description:"The article title"`

	// Hook is a one-sentence angle for the introduction.
	Hook string `json:"hook,omitempty" yaml:"hook,omitempty" jsonschema_description:"A one-sentence angle for the introduction"`

	// Sections lists the article's sections in order.
	Sections []OutlineSection `json:"sections" yaml:"sections" jsonschema_description:"The article sections in order"`
}

// Article is the generated blog post with its rendered forms.
type Article struct {
	// ID is a slug derived from the topic and creation time.
	ID string `json:"id" yaml:"id"`

	// Topic is the user-supplied topic the article was generated for.
	Topic string `json:"topic" yaml:"topic"`

	// Title is the article title from the outline.
	Title string `json:"title" yaml:"title"`

	// Markdown is the full article body in Markdown.
	Markdown string `json:"markdown" yaml:"markdown"`

	// HTML is the rendered form of Markdown.
	HTML string `json:"html,omitempty" yaml:"html,omitempty"`

	// Language is the language the article was written in.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// WordCount is the number of words in Markdown.
	WordCount int `json:"word_count" yaml:"word_count"`

	// ImagePath is the local path of the generated cover image, if any.
	ImagePath string `json:"image_path,omitempty" yaml:"image_path,omitempty"`

	// Sources lists the URLs of the documents the article drew on.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// CreatedAt records when the draft was produced.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
