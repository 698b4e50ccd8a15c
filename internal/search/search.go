// Package search implements the search engine (C10): embed a query,
// load each named document's index, score chunks by cosine similarity, and
// return the top-K matches.
package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/oakbridge-labs/studyrag/internal/embedding/resolver"
	"github.com/oakbridge-labs/studyrag/internal/metrics"
	"github.com/oakbridge-labs/studyrag/internal/store"
	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// Engine answers search queries against previously built indexes.
type Engine struct {
	resolver *resolver.Resolver
	store    *store.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New constructs a search Engine over the given resolver and index store.
func New(r *resolver.Resolver, s *store.Store, m *metrics.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{resolver: r, store: s, metrics: m, logger: logger.With("component", "search-engine")}
}

// Search embeds query with the query-side prefix, loads each docId's index
// (skipping documents with none), scores every chunk by cosine similarity,
// and returns the top topK matches in descending score order, ties broken
// by (docId, ordinal) ascending.
func (e *Engine) Search(ctx context.Context, query string, docIDs []string, topK int) []models.RagMatch {
	if query == "" || len(docIDs) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { e.metrics.RecordSearch(time.Since(start)) }()

	queryVector, err := e.resolver.Embed(ctx, query, true)
	if err != nil {
		e.logger.Warn("search: embedding backend unresolved", "error", err)
		return nil
	}

	type scored struct {
		match   models.RagMatch
		ordinal int
	}

	var matches []scored
	for _, docID := range docIDs {
		file, ok := e.store.Load(docID)
		if !ok {
			continue
		}
		for ordinal, chunk := range file.Chunks {
			matches = append(matches, scored{
				match:   models.RagMatch{Chunk: chunk, Score: cosine(queryVector, chunk.Vector)},
				ordinal: ordinal,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].match.Score != matches[j].match.Score {
			return matches[i].match.Score > matches[j].match.Score
		}
		if matches[i].match.Chunk.DocID != matches[j].match.Chunk.DocID {
			return matches[i].match.Chunk.DocID < matches[j].match.Chunk.DocID
		}
		return matches[i].ordinal < matches[j].ordinal
	})

	if topK >= 0 && topK < len(matches) {
		matches = matches[:topK]
	}

	out := make([]models.RagMatch, len(matches))
	for i, m := range matches {
		out[i] = m.match
	}
	return out
}

// cosine computes cosine similarity, treating missing positions in either
// vector as zero and returning 0 when either norm is zero.
func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
