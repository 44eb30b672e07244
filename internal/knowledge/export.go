// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a passage with source metadata for export.
type ExportEntry struct {
	ID       string        `json:"id" yaml:"id"`
	Kind     string        `json:"kind" yaml:"kind"`
	Content  string        `json:"content" yaml:"content"`
	SourceID string        `json:"source_id" yaml:"source_id"`
	Position int           `json:"position" yaml:"position"`
	Source   *ExportSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// ExportSource holds the source-level fields included in each export entry.
type ExportSource struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

const exportLimit = 100000

// ExportYAML writes the knowledge base to knowledge/index/export.yaml.
// It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.knowledgeDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the knowledge base to knowledge/index/export.json.
// It supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.knowledgeDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:       r.ID,
			Kind:     string(r.Kind),
			Content:  r.Content,
			SourceID: r.SourceID,
			Position: r.Position,
		}
		if r.SourceTitle != "" || r.SourceURL != "" {
			entries[i].Source = &ExportSource{
				Title: r.SourceTitle,
				URL:   r.SourceURL,
			}
		}
	}

	return entries, nil
}
