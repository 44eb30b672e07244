// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/blog-engine/internal/draft"
	"github.com/pdiddy/blog-engine/internal/knowledge"
	"github.com/pdiddy/blog-engine/internal/llm"
	"github.com/pdiddy/blog-engine/pkg/types"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Write the article from the outline",
	Long: `Draft writes the article section by section. For each outline section the
knowledge base is queried for relevant research passages, and the language
model writes the section grounded in them. The finished article is written
to the output directory as Markdown, HTML-rendering YAML, and can be revised
interactively with --revise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		revise, _ := cmd.Flags().GetBool("revise")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var o types.Outline
		if err := readArtifact(workspacePath("outline.yaml"), &o); err != nil {
			return err
		}

		backend, err := llm.New(cfg.Generation.AIConfig)
		if err != nil {
			return err
		}
		store, err := knowledge.NewStore(cfg.KnowledgeBase)
		if err != nil {
			return err
		}
		defer store.Close()

		d, err := draft.New(backend, store, cfg.Generation)
		if err != nil {
			return err
		}

		article, err := d.Draft(cmd.Context(), topic, o, os.Stderr)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d words) to %s\n", article.Title, article.WordCount, cfg.Generation.OutputDir)

		if !revise {
			return nil
		}

		// Interactive revision loop: empty input finishes.
		session := d.NewSession(article)
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("feedback (empty to finish): ")
			if !scanner.Scan() {
				break
			}
			feedback := strings.TrimSpace(scanner.Text())
			if feedback == "" {
				break
			}
			article, err = session.Revise(cmd.Context(), feedback)
			if err != nil {
				fmt.Fprintf(os.Stderr, "revision failed: %v\n", err)
				continue
			}
			fmt.Printf("revised (%d words)\n", article.WordCount)
		}
		return scanner.Err()
	},
}

func init() {
	draftCmd.Flags().String("topic", "", "topic the article is about")
	draftCmd.Flags().Bool("revise", false, "enter an interactive revision loop after drafting")
	draftCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(draftCmd)
}
