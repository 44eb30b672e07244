// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/blog-engine/internal/imagegen"
	"github.com/pdiddy/blog-engine/pkg/types"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Generate a cover image for a drafted article",
	Long: `Image generates a cover illustration for an article through the OpenAI
Images API and stores the PNG next to the article artifacts. The article is
identified by the ID the draft stage printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		articleID, _ := cmd.Flags().GetString("article")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var article types.Article
		path := filepath.Join(cfg.Generation.OutputDir, articleID+".yaml")
		if err := readArtifact(path, &article); err != nil {
			return err
		}

		g, err := imagegen.New(cfg.Image)
		if err != nil {
			return err
		}

		imagePath, err := g.CoverImage(cmd.Context(), article)
		if err != nil {
			return err
		}

		// Record the image on the article artifact.
		article.ImagePath = imagePath
		if err := writeArtifact(path, article); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", imagePath)
		return nil
	},
}

func init() {
	imageCmd.Flags().String("article", "", "article ID from the draft stage")
	imageCmd.MarkFlagRequired("article")

	rootCmd.AddCommand(imageCmd)
}
