// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/blog-engine/internal/collect"
	"github.com/pdiddy/blog-engine/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch the top search results and extract their text",
	Long: `Collect fetches the top-ranked pages from the search stage, extracts
their readable text, and writes one document artifact per page to the
workspace documents directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if pages, _ := cmd.Flags().GetInt("max-pages"); pages > 0 {
			cfg.Collect.MaxPages = pages
		}

		var results []types.WebResult
		if err := readArtifact(workspacePath("search.yaml"), &results); err != nil {
			return err
		}

		urls, err := collect.PrepareURLs(results, cfg.Collect.MaxPages)
		if err != nil {
			return err
		}

		docs, summary, err := collect.New(cfg.Collect).CollectAll(cmd.Context(), urls, os.Stderr)
		if err != nil {
			return err
		}

		fmt.Printf("collected %d documents (%d fetched, %d skipped, %d failed) into %s\n",
			len(docs), summary.Fetched, summary.Skipped, summary.Failed, cfg.Collect.DocumentsDir)
		return nil
	},
}

func init() {
	collectCmd.Flags().Int("max-pages", 0, "number of top results to fetch")

	rootCmd.AddCommand(collectCmd)
}
