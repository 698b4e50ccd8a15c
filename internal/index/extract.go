package index

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/oakbridge-labs/studyrag/internal/tokencount"
	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// maxTextChars bounds plain-text/markdown reads, per spec.
const maxTextChars = 1_000_000

// extract produces the PageText list for a document, dispatching by type,
// and returns the total OCR-side token estimate accumulated during vision
// calls (zero for plain text/markdown).
func (b *Builder) extract(ctx context.Context, doc models.DocumentDescriptor, onProgress func(models.RagIndexProgress)) ([]models.PageText, int, error) {
	switch doc.Type {
	case models.DocumentTypePDF:
		return b.extractPDF(ctx, doc, onProgress)
	case models.DocumentTypeImage:
		return b.extractImage(ctx, doc, onProgress)
	default:
		return b.extractPlainText(doc)
	}
}

func (b *Builder) extractPDF(ctx context.Context, doc models.DocumentDescriptor, onProgress func(models.RagIndexProgress)) ([]models.PageText, int, error) {
	pageCount, err := b.renderer.PageCount(doc.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("open pdf: %w", err)
	}

	provider := b.settings.VisionProvider()
	pages := make([]models.PageText, 0, pageCount)
	ocrTokens := 0
	for i := 0; i < pageCount; i++ {
		onProgress(models.RagIndexProgress{
			Stage:   models.StageOcr,
			Current: i + 1,
			Total:   pageCount,
			Message: fmt.Sprintf("OCR uploading page %d/%d", i+1, pageCount),
		})

		bitmap, err := b.renderer.RenderPage(doc.Path, i)
		if err != nil {
			b.logger.Warn("pdf page render failed", "doc_id", doc.ID, "page", i+1, "error", err)
			pageNum := i + 1
			pages = append(pages, models.PageText{PageNumber: &pageNum})
			continue
		}

		text := b.ocr.Run(ctx, bitmap, fmt.Sprintf("第 %d 页", i+1), provider)
		tokens := tokencount.Estimate(text)
		ocrTokens += tokens
		pageNum := i + 1
		pages = append(pages, models.PageText{PageNumber: &pageNum, Text: text, EstimatedTokens: tokens})

		onProgress(models.RagIndexProgress{
			Stage:           models.StageOcr,
			Current:         i + 1,
			Total:           pageCount,
			ProcessedTokens: ocrTokens,
		})
	}
	return pages, ocrTokens, nil
}

func (b *Builder) extractImage(ctx context.Context, doc models.DocumentDescriptor, onProgress func(models.RagIndexProgress)) ([]models.PageText, int, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	bitmap, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decode image: %w", err)
	}

	onProgress(models.RagIndexProgress{Stage: models.StageOcr, Current: 1, Total: 1, Message: "OCR uploading page 1/1"})

	provider := b.settings.VisionProvider()
	text := b.ocr.Run(ctx, bitmap, doc.Name, provider)
	tokens := tokencount.Estimate(text)

	onProgress(models.RagIndexProgress{Stage: models.StageOcr, Current: 1, Total: 1, ProcessedTokens: tokens})

	return []models.PageText{{Text: text, EstimatedTokens: tokens}}, tokens, nil
}

func (b *Builder) extractPlainText(doc models.DocumentDescriptor) ([]models.PageText, int, error) {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("read file: %w", err)
	}

	text := string(data)
	runes := []rune(text)
	if len(runes) > maxTextChars {
		b.logger.Warn("truncating plain text document", "doc_id", doc.ID, "original_chars", len(runes), "max_chars", maxTextChars)
		text = string(runes[:maxTextChars])
	}

	return []models.PageText{{Text: text}}, 0, nil
}
