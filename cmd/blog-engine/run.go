// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/blog-engine/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: search, research, and write the article",
	Long: `Run executes every stage for a topic in one go: web search, page
collection, summarization, the expert interview, knowledge indexing, the
outline, the draft, and (when enabled) the cover image. Stage artifacts are
written to the workspace as the run progresses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if img, _ := cmd.Flags().GetBool("image"); img {
			cfg.Image.Enabled = true
		}

		p, err := pipeline.New(cfg)
		if err != nil {
			return err
		}

		article, err := p.Run(cmd.Context(), topic, os.Stderr)
		if err != nil {
			return err
		}

		fmt.Printf("article %s: %s (%d words)\n", article.ID, article.Title, article.WordCount)
		if article.ImagePath != "" {
			fmt.Printf("cover image: %s\n", article.ImagePath)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("topic", "", "topic to research and write about")
	runCmd.Flags().Bool("image", false, "also generate a cover image")
	runCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(runCmd)
}
