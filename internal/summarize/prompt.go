// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"strings"
	"text/template"
)

const summarySystem = `You are a content researcher for an SEO-focused blog.
You read web pages about a topic and produce structured research notes that a
writer will later turn into an article. Be faithful to the source: never invent
facts, quotes, or opinions that the page does not contain.`

const summaryPromptText = `Analyze the following web page about "{{.Topic}}".

Page title: {{.Title}}
Page URL: {{.URL}}

Produce:
- a concise summary of the page in a few sentences,
- a short description of the author's writing style,
- the key points the page makes,
- any expert opinions or notable quotes, with attribution where the page gives one.

{{.FormatInstructions}}

Page text:
---
{{.Text}}
---`

var summaryPrompt = template.Must(template.New("summary").Parse(summaryPromptText))

type promptData struct {
	Topic              string
	Title              string
	URL                string
	FormatInstructions string
	Text               string
}

func renderPrompt(data promptData) (string, error) {
	var b strings.Builder
	if err := summaryPrompt.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering summary prompt: %w", err)
	}
	return b.String(), nil
}
