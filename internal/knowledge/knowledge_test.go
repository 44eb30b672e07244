package knowledge

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/blog-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := types.KnowledgeBaseConfig{
		KnowledgeDir: filepath.Join(tmpDir, "knowledge"),
		MaxResults:   20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func sampleDocument(id string) types.Document {
	return types.Document{
		ID:        id,
		URL:       "https://example.com/" + id,
		Title:     "Solar Panel Costs",
		Text:      "Solar panel costs have fallen by eighty percent since 2010.\n\nInstallation labor now dominates residential system prices.",
		FetchedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func sampleSummary(id string) types.DocumentSummary {
	return types.DocumentSummary{
		ConciseSummary: "Module prices collapsed while labor costs held steady.",
		KeyPoints:      []string{"Panels cost 80% less than in 2010", "Labor is the biggest residential cost"},
		ExpertOpinions: []string{"Dr. Reyes: 'Storage is the next bottleneck.'"},
		SourceID:       id,
		SourceURL:      "https://example.com/" + id,
		SourceTitle:    "Solar Panel Costs",
	}
}

func writeDocumentFile(t *testing.T, dir string, doc types.Document) {
	t.Helper()
	data, err := yaml.Marshal(&doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, doc.ID+".yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// --- tests ---

func TestAddDocumentAndRetrieve(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	if err := store.AddDocument(ctx, sampleDocument("doc1")); err != nil {
		t.Fatal(err)
	}

	results, err := store.Retrieve(ctx, QueryOptions{Query: "labor costs"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected results for full-text query")
	}
	if results[0].SourceID != "doc1" {
		t.Errorf("SourceID = %q, want doc1", results[0].SourceID)
	}
	if results[0].SourceURL != "https://example.com/doc1" {
		t.Errorf("SourceURL = %q", results[0].SourceURL)
	}
}

func TestAddDocumentReplacesOldPassages(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	doc := sampleDocument("doc1")
	if err := store.AddDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	doc.Text = "Completely new text about heat pumps replacing gas furnaces."
	if err := store.AddDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	old, err := store.Retrieve(ctx, QueryOptions{Query: "installation labor"})
	if err != nil {
		t.Fatal(err)
	}
	if len(old) != 0 {
		t.Errorf("expected old passages to be gone, got %d", len(old))
	}

	fresh, err := store.Retrieve(ctx, QueryOptions{Query: "heat pumps"})
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) == 0 {
		t.Error("expected new passages to be indexed")
	}
}

func TestAddSummaryIndexesAllKinds(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	if err := store.AddSummary(ctx, sampleSummary("doc1")); err != nil {
		t.Fatal(err)
	}

	for _, kind := range []types.PassageKind{types.PassageSummary, types.PassageKeyPoint, types.PassageOpinion} {
		results, err := store.Retrieve(ctx, QueryOptions{Kind: kind})
		if err != nil {
			t.Fatal(err)
		}
		if len(results) == 0 {
			t.Errorf("expected passages of kind %s", kind)
		}
	}

	opinions, err := store.Retrieve(ctx, QueryOptions{Query: "storage bottleneck", Kind: types.PassageOpinion})
	if err != nil {
		t.Fatal(err)
	}
	if len(opinions) != 1 {
		t.Fatalf("expected 1 opinion, got %d", len(opinions))
	}
	if !strings.Contains(opinions[0].Content, "Dr. Reyes") {
		t.Errorf("Content = %q", opinions[0].Content)
	}
}

func TestAddInterview(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	pairs := []types.QAPair{
		{Question: "Is rooftop solar worth it?", Answer: "For most suitable roofs, yes."},
		{Question: "What about batteries?", Answer: "Payback periods are still long."},
	}
	if err := store.AddInterview(ctx, "Solar Panels!", pairs); err != nil {
		t.Fatal(err)
	}

	results, err := store.Retrieve(ctx, QueryOptions{Kind: types.PassageQA})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 QA passages, got %d", len(results))
	}
	if results[0].SourceID != "interview-solar-panels" {
		t.Errorf("SourceID = %q", results[0].SourceID)
	}
}

func TestRetrieveToleratesPunctuation(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	if err := store.AddDocument(ctx, sampleDocument("doc1")); err != nil {
		t.Fatal(err)
	}

	// Headings with FTS5 operator characters must not error.
	results, err := store.Retrieve(ctx, QueryOptions{Query: `What's next for "solar" (costs)?`})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Error("expected results despite punctuation in query")
	}
}

func TestRetrieveStructuredOnly(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	if err := store.AddDocument(ctx, sampleDocument("doc1")); err != nil {
		t.Fatal(err)
	}
	if err := store.AddSummary(ctx, sampleSummary("doc1")); err != nil {
		t.Fatal(err)
	}

	results, err := store.Retrieve(ctx, QueryOptions{SourceID: "doc1", Kind: types.PassageDocument})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Kind != types.PassageDocument {
			t.Errorf("unexpected kind %s", r.Kind)
		}
	}
	if len(results) == 0 {
		t.Error("expected document passages")
	}
}

func TestRetrieveHonorsMaxResults(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	if err := store.AddSummary(ctx, sampleSummary("doc1")); err != nil {
		t.Fatal(err)
	}

	results, err := store.Retrieve(ctx, QueryOptions{MaxResults: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestIngestDocumentsIncremental(t *testing.T) {
	store, tmpDir := testSetup(t)
	ctx := context.Background()

	docsDir := filepath.Join(tmpDir, "documents")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeDocumentFile(t, docsDir, sampleDocument("doc1"))
	writeDocumentFile(t, docsDir, sampleDocument("doc2"))

	var buf bytes.Buffer
	summary, err := store.IngestDocuments(ctx, docsDir, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", summary.Indexed)
	}

	// Second run with unchanged files skips everything.
	buf.Reset()
	summary, err = store.IngestDocuments(ctx, docsDir, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", summary.Skipped)
	}

	// Touching a file re-indexes it.
	path := filepath.Join(docsDir, "doc1.yaml")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	summary, err = store.IngestDocuments(ctx, docsDir, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 || summary.Skipped != 1 {
		t.Errorf("Updated = %d, Skipped = %d", summary.Updated, summary.Skipped)
	}
}

func TestIngestDocumentsBadYAML(t *testing.T) {
	store, tmpDir := testSetup(t)

	docsDir := filepath.Join(tmpDir, "documents")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docsDir, "broken.yaml"), []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := store.IngestDocuments(context.Background(), docsDir, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
}

func TestExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	ctx := context.Background()

	if err := store.AddSummary(ctx, sampleSummary("doc1")); err != nil {
		t.Fatal(err)
	}
	if err := store.ExportYAML(ctx, QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "knowledge", indexDir, "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("expected export entries")
	}
	if entries[0].Source == nil || entries[0].Source.URL == "" {
		t.Error("expected source metadata in export")
	}
}

func TestSplitPassages(t *testing.T) {
	short := splitPassages("one two three", 10)
	if len(short) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(short))
	}

	long := strings.Repeat("word ", 50)
	chunks := splitPassages(long, 20)
	if len(chunks) != 3 {
		t.Errorf("expected 3 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if n := len(strings.Fields(c)); n > 20 {
			t.Errorf("chunk has %d words", n)
		}
	}

	if got := splitPassages("", 20); len(got) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(got))
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Solar Panels!":        "solar-panels",
		"  heat   pumps 2026 ": "heat-pumps-2026",
		"électricité":          "lectricit",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
