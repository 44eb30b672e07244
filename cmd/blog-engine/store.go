// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/blog-engine/internal/knowledge"
	"github.com/pdiddy/blog-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the research knowledge base (ingest, query, export)",
	Long: `Store manages the local SQLite knowledge base the draft stage retrieves
from. Use subcommands to index the collected research, query it with
full-text search, or export it.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index collected documents, summaries, and the interview",
	Long: `Ingest indexes the workspace research into the knowledge base: document
artifacts are chunked into passages, summaries contribute their key points
and expert opinions, and the interview Q&A is indexed under the topic.
Unchanged document files are skipped on subsequent runs.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := knowledge.NewStore(cfg.KnowledgeBase)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.IngestDocuments(cmd.Context(), cfg.Collect.DocumentsDir, os.Stdout)
	if err != nil {
		return err
	}

	// Summaries and the interview are indexed when their artifacts exist.
	if summaries, err := readSummaries(cfg.Summary.SummariesDir); err == nil {
		for _, s := range summaries {
			if err := store.AddSummary(cmd.Context(), s); err != nil {
				return err
			}
		}
		fmt.Printf("indexed %d summaries\n", len(summaries))
	}

	var pairs []types.QAPair
	if err := readArtifact(workspacePath("interview.yaml"), &pairs); err == nil && topic != "" {
		if err := store.AddInterview(cmd.Context(), topic, pairs); err != nil {
			return err
		}
		fmt.Printf("indexed %d interview answers\n", len(pairs))
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [query]",
	Short: "Query the knowledge base with full-text search and filters",
	Long: `Query searches the knowledge base using FTS5 full-text search,
structured filters (kind, source), or a combination of both. Results
include provenance links to the source page.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := knowledge.NewStore(cfg.KnowledgeBase)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --kind, or --source")
	}

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []knowledge.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-14s  %-60s  %s\n", "Rank", "Kind", "Content", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range results {
		content := strings.ReplaceAll(r.Content, "\n", " ")
		if len(content) > 60 {
			content = content[:57] + "..."
		}
		source := r.SourceTitle
		if source == "" {
			source = r.SourceID
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-14s  %-60s  %s\n", i+1, r.Kind, content, source)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base to YAML or JSON",
	Long: `Export writes the full knowledge base (or a filtered subset) to
the knowledge index directory as export.yaml or export.json. Supports the
same filter flags as query for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := knowledge.NewStore(cfg.KnowledgeBase)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.yaml\n", cfg.KnowledgeBase.KnowledgeDir)
	case "json":
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.json\n", cfg.KnowledgeBase.KnowledgeDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) knowledge.QueryOptions {
	kind, _ := cmd.Flags().GetString("kind")
	source, _ := cmd.Flags().GetString("source")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	opts := knowledge.QueryOptions{
		Kind:       types.PassageKind(kind),
		SourceID:   source,
		MaxResults: maxResults,
	}
	if len(args) > 0 {
		opts.Query = strings.Join(args, " ")
	}
	return opts
}

func init() {
	storeIngestCmd.Flags().String("topic", "", "topic for indexing the interview")

	for _, c := range []*cobra.Command{storeQueryCmd, storeExportCmd} {
		c.Flags().String("kind", "", "filter by passage kind: document, summary, key_point, expert_opinion, qa")
		c.Flags().String("source", "", "filter by source document ID")
		c.Flags().Int("max-results", 0, "maximum number of results")
	}
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeIngestCmd, storeQueryCmd, storeExportCmd)
	rootCmd.AddCommand(storeCmd)
}
