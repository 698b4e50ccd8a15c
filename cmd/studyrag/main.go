// Package main provides the CLI entry point for studyrag: a document
// indexing and semantic search tool. It OCRs scanned pages through a
// configurable vision provider, chunks and embeds the resulting text, and
// answers search queries by cosine similarity over the persisted index.
//
// # Basic Usage
//
// Register a document, then build its index:
//
//	studyrag register --id doc1 --path paper.pdf --type pdf --name "paper.pdf"
//	studyrag build --id doc1
//
// Search previously built indexes:
//
//	studyrag search --query "what is the eviction policy" doc1 doc2
//
// Serve Prometheus metrics:
//
//	studyrag serve --addr :9090
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"

	settingsPath string
	indexDir     string
	catalogPath  string
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "studyrag",
		Short:   "studyrag - document indexing and semantic search",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		// SilenceUsage prevents printing usage on every error.
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "studyrag.yaml", "Path to the settings YAML file")
	rootCmd.PersistentFlags().StringVar(&indexDir, "index-dir", "./index", "Directory the index store persists to")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "catalog.json", "Path to the document catalog JSON file")

	rootCmd.AddCommand(
		buildRegisterCmd(),
		buildBuildCmd(),
		buildSearchCmd(),
		buildServeCmd(),
	)

	return rootCmd
}
