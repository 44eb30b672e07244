// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/blog-engine/pkg/types"
)

// Stage commands hand results to the next stage through YAML files in
// the workspace, so stages can be run and inspected one at a time.

func workspacePath(name string) string {
	return filepath.Join(viper.GetString("workspace"), name)
}

func writeArtifact(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readArtifact(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w (run the earlier stages first)", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// readDocuments loads every document artifact in dir, sorted by filename.
func readDocuments(dir string) ([]types.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w (run collect first)", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]types.Document, 0, len(names))
	for _, name := range names {
		var doc types.Document
		if err := readArtifact(filepath.Join(dir, name), &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents in %s (run collect first)", dir)
	}
	return docs, nil
}

// readSummaries loads every summary artifact in dir, sorted by filename.
func readSummaries(dir string) ([]types.DocumentSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w (run summarize first)", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	summaries := make([]types.DocumentSummary, 0, len(names))
	for _, name := range names {
		var s types.DocumentSummary
		if err := readArtifact(filepath.Join(dir, name), &s); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no summaries in %s (run summarize first)", dir)
	}
	return summaries, nil
}
