// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists research passages and builds the full-text
// retrieval index the drafting stage queries. Passages come from three
// places: chunks of collected page text, structured summaries, and the
// expert interview.
package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/blog-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "knowledge.db"

	// chunkWords bounds the size of document text chunks.
	chunkWords = 180
)

// Store manages the knowledge base SQLite database.
type Store struct {
	db           *sql.DB
	knowledgeDir string
	maxResults   int
}

// NewStore opens or creates the knowledge base SQLite database at
// knowledgeDir/index/knowledge.db, creating the schema if needed.
func NewStore(cfg types.KnowledgeBaseConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.KnowledgeDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 8
	}

	s := &Store{
		db:           db,
		knowledgeDir: cfg.KnowledgeDir,
		maxResults:   maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			url TEXT,
			title TEXT,
			site_name TEXT,
			language TEXT,
			fetched_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS passages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			content TEXT NOT NULL,
			source_id TEXT NOT NULL REFERENCES sources(id),
			position INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_passages_source_id ON passages(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_passages_kind ON passages(kind)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			source_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='passages_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE passages_fts USING fts5(content, content=passages, content_rowid=rowid)`,
			`CREATE TRIGGER passages_ai AFTER INSERT ON passages BEGIN
				INSERT INTO passages_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER passages_ad AFTER DELETE ON passages BEGIN
				INSERT INTO passages_fts(passages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER passages_au AFTER UPDATE ON passages BEGIN
				INSERT INTO passages_fts(passages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO passages_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// AddDocument indexes a collected document, chunking its text into
// passages. Re-adding a document replaces its previous passages.
func (s *Store) AddDocument(ctx context.Context, doc types.Document) error {
	chunks := splitPassages(doc.Text, chunkWords)
	passages := make([]types.Passage, len(chunks))
	for i, chunk := range chunks {
		passages[i] = types.Passage{
			ID:       fmt.Sprintf("%s-doc-%03d", doc.ID, i),
			Kind:     types.PassageDocument,
			Content:  chunk,
			SourceID: doc.ID,
			Position: i,
		}
	}
	return s.replacePassages(ctx, sourceRecord(doc), types.PassageDocument, passages)
}

// AddSummary indexes a document summary as retrievable passages: the
// concise summary, each key point, and each expert opinion.
func (s *Store) AddSummary(ctx context.Context, summary types.DocumentSummary) error {
	src := source{
		ID:    summary.SourceID,
		URL:   summary.SourceURL,
		Title: summary.SourceTitle,
	}

	passages := []types.Passage{{
		ID:       summary.SourceID + "-sum",
		Kind:     types.PassageSummary,
		Content:  summary.ConciseSummary,
		SourceID: summary.SourceID,
	}}
	for i, point := range summary.KeyPoints {
		passages = append(passages, types.Passage{
			ID:       fmt.Sprintf("%s-kp-%03d", summary.SourceID, i),
			Kind:     types.PassageKeyPoint,
			Content:  point,
			SourceID: summary.SourceID,
			Position: i,
		})
	}
	for i, op := range summary.ExpertOpinions {
		passages = append(passages, types.Passage{
			ID:       fmt.Sprintf("%s-op-%03d", summary.SourceID, i),
			Kind:     types.PassageOpinion,
			Content:  op,
			SourceID: summary.SourceID,
			Position: i,
		})
	}

	// One transaction replaces all three summary-derived kinds.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertSource(ctx, tx, src); err != nil {
		return err
	}
	for _, kind := range []types.PassageKind{types.PassageSummary, types.PassageKeyPoint, types.PassageOpinion} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM passages WHERE source_id = ? AND kind = ?`, src.ID, string(kind)); err != nil {
			return fmt.Errorf("deleting old passages: %w", err)
		}
	}
	if err := insertPassages(ctx, tx, passages); err != nil {
		return err
	}
	return tx.Commit()
}

// AddInterview indexes the interview Q&A pairs under a topic-derived
// source ID.
func (s *Store) AddInterview(ctx context.Context, topic string, pairs []types.QAPair) error {
	sourceID := "interview-" + slugify(topic)
	passages := make([]types.Passage, len(pairs))
	for i, pair := range pairs {
		passages[i] = types.Passage{
			ID:       fmt.Sprintf("%s-qa-%03d", sourceID, i),
			Kind:     types.PassageQA,
			Content:  fmt.Sprintf("Q: %s\nA: %s", pair.Question, pair.Answer),
			SourceID: sourceID,
			Position: i,
		}
	}
	src := source{ID: sourceID, Title: "Expert interview: " + topic}
	return s.replacePassages(ctx, src, types.PassageQA, passages)
}

// IngestSummary holds counts from a knowledge base indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of document files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// IngestDocuments reads document YAML artifacts from documentsDir and
// indexes them. Files whose modification time is unchanged since the
// last run are skipped, so repeated runs are incremental.
func (s *Store) IngestDocuments(ctx context.Context, documentsDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(documentsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading documents directory %s: %w", documentsDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		sourceID := strings.TrimSuffix(entry.Name(), ".yaml")
		filePath := filepath.Join(documentsDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE source_id = ?`, sourceID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", sourceID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		var doc types.Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", sourceID, err)
			summary.Failed++
			continue
		}
		if doc.ID == "" {
			doc.ID = sourceID
		}

		if err := s.AddDocument(ctx, doc); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}
		if err := s.markIndexed(ctx, sourceID, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", sourceID)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", sourceID)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

type source struct {
	ID        string
	URL       string
	Title     string
	SiteName  string
	Language  string
	FetchedAt string
}

func sourceRecord(doc types.Document) source {
	fetched := ""
	if !doc.FetchedAt.IsZero() {
		fetched = doc.FetchedAt.UTC().Format(time.RFC3339)
	}
	return source{
		ID:        doc.ID,
		URL:       doc.URL,
		Title:     doc.Title,
		SiteName:  doc.SiteName,
		Language:  doc.Language,
		FetchedAt: fetched,
	}
}

// replacePassages swaps a source's passages of one kind inside a
// transaction.
func (s *Store) replacePassages(ctx context.Context, src source, kind types.PassageKind, passages []types.Passage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertSource(ctx, tx, src); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM passages WHERE source_id = ? AND kind = ?`, src.ID, string(kind)); err != nil {
		return fmt.Errorf("deleting old passages: %w", err)
	}
	if err := insertPassages(ctx, tx, passages); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertSource(ctx context.Context, tx *sql.Tx, src source) error {
	if src.ID == "" {
		return fmt.Errorf("source id is required")
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sources (id, url, title, site_name, language, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			url=excluded.url, title=excluded.title, site_name=excluded.site_name,
			language=excluded.language, fetched_at=excluded.fetched_at`,
		src.ID, src.URL, src.Title, src.SiteName, src.Language, src.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting source: %w", err)
	}
	return nil
}

func insertPassages(ctx context.Context, tx *sql.Tx, passages []types.Passage) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO passages (id, kind, content, source_id, position)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range passages {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, string(p.Kind), p.Content, p.SourceID, p.Position); err != nil {
			return fmt.Errorf("inserting passage %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *Store) markIndexed(ctx context.Context, sourceID, modTime string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO indexing_status (source_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		sourceID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}
	return nil
}

// splitPassages breaks text into chunks of at most maxWords words,
// preferring paragraph boundaries.
func splitPassages(text string, maxWords int) []string {
	var chunks []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		if len(current)+len(words) > maxWords {
			flush()
		}
		for len(words) > maxWords {
			chunks = append(chunks, strings.Join(words[:maxWords], " "))
			words = words[maxWords:]
		}
		current = append(current, words...)
	}
	flush()
	return chunks
}

// slugify lowercases a topic and replaces runs of non-alphanumerics with
// single dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
