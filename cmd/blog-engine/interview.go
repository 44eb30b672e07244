// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/blog-engine/internal/interview"
	"github.com/pdiddy/blog-engine/internal/llm"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Interview the model as a subject-matter expert",
	Long: `Interview derives questions from the document summaries and asks the
language model to answer each one as a subject-matter expert. The answers are
threaded through one conversation so later answers can build on earlier ones.
The Q&A pairs are written to the workspace for the outline and store stages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if n, _ := cmd.Flags().GetInt("questions"); n > 0 {
			cfg.Interview.Questions = n
		}

		summaries, err := readSummaries(cfg.Summary.SummariesDir)
		if err != nil {
			return err
		}

		backend, err := llm.New(cfg.Interview.AIConfig)
		if err != nil {
			return err
		}
		iv, err := interview.New(backend, cfg.Interview)
		if err != nil {
			return err
		}

		pairs, err := iv.Conduct(cmd.Context(), topic, summaries, os.Stderr)
		if err != nil {
			return err
		}

		if err := writeArtifact(workspacePath("interview.yaml"), pairs); err != nil {
			return err
		}
		fmt.Printf("answered %d questions, wrote %s\n", len(pairs), workspacePath("interview.yaml"))
		return nil
	},
}

func init() {
	interviewCmd.Flags().String("topic", "", "topic to interview about")
	interviewCmd.Flags().Int("questions", 0, "number of interview questions")
	interviewCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(interviewCmd)
}
