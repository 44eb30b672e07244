// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/blog-engine/pkg/types"
)

// QueryOptions holds parameters for knowledge base queries.
type QueryOptions struct {
	// Query is the full-text search string. Punctuation is stripped and
	// terms are OR-combined before reaching FTS5.
	Query string

	// Kind filters by passage kind.
	Kind types.PassageKind

	// SourceID filters by source document.
	SourceID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Kind == "" && q.SourceID == ""
}

// QueryResult is a Passage with its source metadata.
type QueryResult struct {
	types.Passage
	SourceTitle string `json:"source_title" yaml:"source_title"`
	SourceURL   string `json:"source_url" yaml:"source_url"`
}

// Retrieve queries the knowledge base with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries are sorted by source and position.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = false
	)

	if opts.Query != "" {
		match := ftsQuery(opts.Query)
		if match != "" {
			useFTS = true
			qb.WriteString(
				`SELECT p.id, p.kind, p.content, p.source_id, p.position,
					src.title, src.url, passages_fts.rank
				FROM passages_fts
				JOIN passages p ON p.rowid = passages_fts.rowid
				LEFT JOIN sources src ON p.source_id = src.id
				WHERE passages_fts MATCH ?`)
			args = append(args, match)
		}
	}
	if !useFTS {
		qb.WriteString(
			`SELECT p.id, p.kind, p.content, p.source_id, p.position,
				src.title, src.url, 0 AS rank
			FROM passages p
			LEFT JOIN sources src ON p.source_id = src.id
			WHERE 1=1`)
	}

	if opts.Kind != "" {
		qb.WriteString(` AND p.kind = ?`)
		args = append(args, string(opts.Kind))
	}

	if opts.SourceID != "" {
		qb.WriteString(` AND p.source_id = ?`)
		args = append(args, opts.SourceID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY passages_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY p.source_id, p.position`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge base: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr          QueryResult
			kind        string
			sourceTitle sql.NullString
			sourceURL   sql.NullString
			rank        float64
		)

		if err := rows.Scan(
			&qr.ID, &kind, &qr.Content, &qr.SourceID, &qr.Position,
			&sourceTitle, &sourceURL, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Kind = types.PassageKind(kind)
		if sourceTitle.Valid {
			qr.SourceTitle = sourceTitle.String
		}
		if sourceURL.Valid {
			qr.SourceURL = sourceURL.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// ftsQuery converts free text into an FTS5 MATCH expression. Each
// alphanumeric term is quoted and the terms are OR-combined, so headings
// like "What Comes Next?" cannot trip FTS5 syntax errors.
func ftsQuery(text string) string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	if len(fields) == 0 {
		return ""
	}
	terms := make([]string, len(fields))
	for i, f := range fields {
		terms[i] = `"` + f + `"`
	}
	return strings.Join(terms, " OR ")
}
