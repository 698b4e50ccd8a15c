package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	searchQuery string
	searchTopK  int
)

func buildSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [doc-id...]",
		Short: "Search one or more previously built document indexes",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	cmd.Flags().StringVar(&searchQuery, "query", "", "Search query text (required)")
	cmd.Flags().IntVar(&searchTopK, "top", 5, "Maximum number of results to return")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runSearch(cmd *cobra.Command, docIDs []string) error {
	logger := slog.Default()
	a, err := newApp(logger)
	if err != nil {
		return err
	}

	matches := a.search.Search(context.Background(), searchQuery, docIDs, searchTopK)
	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matches")
		return nil
	}
	for i, m := range matches {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. [%.4f] %s: %s\n", i+1, m.Score, m.Chunk.ID, truncate(m.Chunk.Text, 200))
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
