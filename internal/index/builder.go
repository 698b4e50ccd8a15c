// Package index implements the index builder (C8): the pipeline that turns
// a document descriptor into a persisted, per-chunk-embedded RagIndexFile,
// reporting progress through every stage in §4.8.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oakbridge-labs/studyrag/internal/chunker"
	"github.com/oakbridge-labs/studyrag/internal/embedding/resolver"
	"github.com/oakbridge-labs/studyrag/internal/metrics"
	"github.com/oakbridge-labs/studyrag/internal/ocr"
	"github.com/oakbridge-labs/studyrag/internal/settings"
	"github.com/oakbridge-labs/studyrag/internal/store"
	"github.com/oakbridge-labs/studyrag/internal/tokencount"
	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// Builder runs the five-stage build pipeline for one document at a time.
// Callers construct a fresh Resolver per build so the per-call local-to-
// remote downgrade (§4.7) applies only to that build.
type Builder struct {
	resolver *resolver.Resolver
	store    *store.Store
	ocr      *ocr.Step
	renderer PDFRenderer
	settings settings.Provider
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New constructs a Builder. renderer may be nil, in which case
// DefaultPDFRenderer is used. m may be nil.
func New(r *resolver.Resolver, s *store.Store, ocrStep *ocr.Step, renderer PDFRenderer, settingsProvider settings.Provider, m *metrics.Metrics, logger *slog.Logger) *Builder {
	if renderer == nil {
		renderer = DefaultPDFRenderer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		resolver: r,
		store:    s,
		ocr:      ocrStep,
		renderer: renderer,
		settings: settingsProvider,
		metrics:  m,
		logger:   logger.With("component", "index-builder"),
	}
}

// BuildIndex runs Preparing, Extraction, Chunking, Vectorizing, and Saving
// in order, invoking onProgress synchronously at each stage transition and
// at every per-unit advance within Extraction and Vectorizing. onProgress
// must never block; the caller owns marshaling it to a UI thread.
//
// A failure at any stage emits a single StageError progress event and
// returns a zero-chunk result; no partial index file is ever written.
func (b *Builder) BuildIndex(ctx context.Context, doc models.DocumentDescriptor, onProgress func(models.RagIndexProgress)) models.RagIndexResult {
	if onProgress == nil {
		onProgress = func(models.RagIndexProgress) {}
	}
	start := time.Now()
	docType := string(doc.Type)
	buildLog := b.logger.With("build_id", uuid.NewString(), "doc_id", doc.ID)
	fail := func(format string, args ...any) models.RagIndexResult {
		msg := fmt.Sprintf(format, args...)
		buildLog.Warn("build failed", "error", msg)
		onProgress(models.RagIndexProgress{Stage: models.StageError, Message: msg})
		b.metrics.RecordBuild(docType, "error", time.Since(start), 0)
		return models.RagIndexResult{DocumentID: doc.ID}
	}

	onProgress(models.RagIndexProgress{Stage: models.StagePreparing, Message: "resolving embedding backend"})
	if _, err := b.resolver.Resolve(); err != nil {
		if errors.Is(err, resolver.ErrUnconfigured) {
			return fail("no embedding backend is configured")
		}
		return fail("resolve embedding backend: %v", err)
	}

	pages, ocrTokens, err := b.extract(ctx, doc, onProgress)
	if err != nil {
		return fail("extract document: %v", err)
	}
	if allBlank(pages) {
		return fail("document produced no extractable text")
	}

	onProgress(models.RagIndexProgress{Stage: models.StageChunking, Message: "splitting into chunks"})
	sections := chunker.Sectionize(pages)
	chunks := chunker.Chunk(doc.ID, sections)
	if len(chunks) == 0 {
		return fail("chunking produced no chunks")
	}

	embeddingTokens := 0
	for _, c := range chunks {
		embeddingTokens += tokencount.Estimate(c.Text)
	}
	totalTokens := ocrTokens + embeddingTokens

	onProgress(models.RagIndexProgress{
		Stage:           models.StageVectorizing,
		Current:         0,
		Total:           len(chunks),
		EstimatedTokens: totalTokens,
	})
	processedTokens := 0
	for i := range chunks {
		select {
		case <-ctx.Done():
			return fail("build canceled")
		default:
		}

		vector, err := b.resolver.Embed(ctx, chunks[i].Text, false)
		if err != nil {
			return fail("embed chunk %d: %v", i, err)
		}
		chunks[i].Vector = vector
		processedTokens += tokencount.Estimate(chunks[i].Text)

		onProgress(models.RagIndexProgress{
			Stage:           models.StageVectorizing,
			Current:         i + 1,
			Total:           len(chunks),
			ProcessedTokens: processedTokens,
			EstimatedTokens: totalTokens,
			Message:         chunkLabel(chunks[i].PageStart),
		})
	}

	onProgress(models.RagIndexProgress{Stage: models.StageSaving, Message: "writing index file"})
	file := models.RagIndexFile{
		Version:       models.IndexSchemaVersion,
		DocID:         doc.ID,
		TokenEstimate: totalTokens,
		Chunks:        chunks,
	}
	if err := b.store.Save(doc.ID, file); err != nil {
		return fail("save index: %v", err)
	}

	onProgress(models.RagIndexProgress{Stage: models.StageCompleted, Total: len(chunks), EstimatedTokens: totalTokens})
	b.metrics.RecordBuild(docType, "completed", time.Since(start), len(chunks))
	return models.RagIndexResult{
		DocumentID:      doc.ID,
		ChunkCount:      len(chunks),
		EstimatedTokens: totalTokens,
	}
}

// chunkLabel reports the per-chunk label shown alongside vectorizing
// progress: the originating page when known, or "全文" for page-less
// (plain text / markdown) chunks.
func chunkLabel(pageStart *int) string {
	if pageStart != nil {
		return fmt.Sprintf("第%d页", *pageStart)
	}
	return "全文"
}

func allBlank(pages []models.PageText) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return false
		}
	}
	return true
}
