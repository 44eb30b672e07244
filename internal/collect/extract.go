// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/pdiddy/blog-engine/pkg/types"
)

// Extract turns raw page HTML into a Document. Readability distills the
// main article content; goquery fills in the title when the page does not
// declare one readability can use.
func Extract(pageURL, html string) (*types.Document, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", pageURL, err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("extracting readable content: %w", err)
	}

	text := normalizeText(article.TextContent)

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = fallbackTitle(html)
	}

	doc := &types.Document{
		ID:        DocumentID(pageURL),
		URL:       pageURL,
		Title:     title,
		SiteName:  strings.TrimSpace(article.SiteName),
		Text:      text,
		Excerpt:   strings.TrimSpace(article.Excerpt),
		WordCount: len(strings.Fields(text)),
	}

	if code, ok := detectLanguage(text); ok {
		doc.Language = code
	}

	return doc, nil
}

// fallbackTitle pulls <title> or the first <h1> out of the raw HTML.
func fallbackTitle(html string) string {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if t := strings.TrimSpace(gq.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(gq.Find("h1").First().Text())
}

// normalizeText collapses runs of blank lines and trims each line.
func normalizeText(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Language detection is restricted to the languages the drafting prompts
// support; building the detector is expensive, so it is shared and lazy.
var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func detectLanguage(text string) (string, bool) {
	if len(text) < 40 {
		return "", false
	}
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English, lingua.Spanish, lingua.French, lingua.German,
				lingua.Portuguese, lingua.Italian, lingua.Japanese, lingua.Chinese,
			).
			Build()
	})
	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
