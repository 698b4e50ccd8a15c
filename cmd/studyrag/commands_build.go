package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/oakbridge-labs/studyrag/internal/docstore"
	"github.com/oakbridge-labs/studyrag/pkg/models"
)

var buildDocID string

func buildBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build or rebuild the search index for one registered document",
		RunE:  runBuild,
	}
	cmd.Flags().StringVar(&buildDocID, "id", "", "Document id, as passed to register (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	catalog, err := docstore.LoadMap(catalogPath)
	if err != nil {
		return err
	}
	doc, ok := catalog.GetDocument(buildDocID)
	if !ok {
		return fmt.Errorf("document %q is not registered; run %q first", buildDocID, "studyrag register --id "+buildDocID+" --path ...")
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}

	result := a.builder.BuildIndex(context.Background(), doc, func(p models.RagIndexProgress) {
		switch {
		case p.Message != "" && p.Total > 0:
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%d/%d)\n", p.Stage, p.Message, p.Current, p.Total)
		case p.Message != "":
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", p.Stage, p.Message)
		case p.Total > 0:
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %d/%d\n", p.Stage, p.Current, p.Total)
		}
	})

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d chunks (%d estimated tokens) for %s\n", result.ChunkCount, result.EstimatedTokens, result.DocumentID)
	return nil
}
