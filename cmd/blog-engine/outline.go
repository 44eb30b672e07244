// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/blog-engine/internal/interview"
	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/internal/outline"
	"github.com/pdiddy/blog-engine/pkg/types"
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Plan the article structure",
	Long: `Outline asks the language model to plan the article: a title, an
introduction hook, and an ordered list of sections with the points each
should cover, grounded in the summaries and interview. The outline is
written to the workspace for the draft stage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		summaries, err := readSummaries(cfg.Summary.SummariesDir)
		if err != nil {
			return err
		}

		var pairs []types.QAPair
		if err := readArtifact(workspacePath("interview.yaml"), &pairs); err != nil {
			// The interview enriches the outline but is not required.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}

		backend, err := llm.New(cfg.Outline.AIConfig)
		if err != nil {
			return err
		}
		planner, err := outline.New(backend, cfg.Outline)
		if err != nil {
			return err
		}

		o, err := planner.Plan(cmd.Context(), topic, interview.FormatNotes(summaries), pairs)
		if err != nil {
			return err
		}

		if err := writeArtifact(workspacePath("outline.yaml"), o); err != nil {
			return err
		}

		fmt.Printf("outline: %s\n", o.Title)
		for i, s := range o.Sections {
			fmt.Printf("  %d. %s\n", i+1, s.Heading)
		}
		fmt.Printf("wrote %s\n", workspacePath("outline.yaml"))
		return nil
	},
}

func init() {
	outlineCmd.Flags().String("topic", "", "topic the article is about")
	outlineCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(outlineCmd)
}
