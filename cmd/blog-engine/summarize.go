// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize the collected documents with the language model",
	Long: `Summarize sends each collected document to the language model and parses
the structured summary it returns: a concise summary, the source's writing
style, key points, and expert opinions. Summary artifacts are written to the
workspace summaries directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		docs, err := readDocuments(cfg.Collect.DocumentsDir)
		if err != nil {
			return err
		}

		backend, err := llm.New(cfg.Summary.AIConfig)
		if err != nil {
			return err
		}
		s, err := summarize.New(backend, cfg.Summary)
		if err != nil {
			return err
		}

		summaries, err := s.SummarizeAll(cmd.Context(), topic, docs, os.Stderr)
		if err != nil {
			return err
		}

		fmt.Printf("summarized %d/%d documents into %s\n",
			len(summaries), len(docs), cfg.Summary.SummariesDir)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().String("topic", "", "topic the documents were collected for")
	summarizeCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(summarizeCmd)
}
