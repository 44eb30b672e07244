// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/blog-engine/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the web for pages about a topic",
	Long: `Search queries the enabled web search APIs (SerpAPI Google, Brave) for
pages about a topic. Results are deduplicated across backends, ranked by
relevance, and written to the workspace for the collect stage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if max, _ := cmd.Flags().GetInt("max-results"); max > 0 {
			cfg.Search.MaxResults = max
		}

		out, err := search.Search(cmd.Context(), topic, search.Backends(cfg.Search), cfg.Search, os.Stderr)
		if err != nil {
			return err
		}

		if err := writeArtifact(workspacePath("search.yaml"), out.Results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", workspacePath("search.yaml"))

		if asJSON {
			return search.FormatJSON(out, os.Stdout)
		}
		search.FormatTable(out, os.Stdout)
		return nil
	},
}

func init() {
	searchCmd.Flags().String("topic", "", "topic to research")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results to return")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(searchCmd)
}
