// Package ocr implements the OCR step (C5): turn one page bitmap into text
// by sending it to the configured vision provider through the streaming LLM
// client, instructing the model to mark section boundaries with a sentinel
// the chunker later splits on.
package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/oakbridge-labs/studyrag/internal/llm"
	"github.com/oakbridge-labs/studyrag/internal/metrics"
	"github.com/oakbridge-labs/studyrag/pkg/models"
)

const (
	minMaxOutputTokens = 512
	minRecommended     = 256
	recommendedRatio   = 0.7

	systemPromptTemplate = "You are transcribing a scanned document page into plain text. " +
		"Preserve paragraph structure. At the end of each logical section, " +
		"emit the literal sentinel " + models.SectionSentinel + " on its own line, and nowhere else."
)

// Step runs the OCR step for one page image at a time. Each call builds a
// fresh LLM client, per spec §4.5 step 4.
type Step struct {
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New constructs an OCR Step. m may be nil.
func New(m *metrics.Metrics, logger *slog.Logger) *Step {
	if logger == nil {
		logger = slog.Default()
	}
	return &Step{metrics: m, logger: logger.With("component", "ocr-step")}
}

// Run OCRs one page. label is a human-readable page label such as "第 3
// 页", used in the prompt text. On success it returns the trimmed model
// output; on failure it logs the error and returns "".
func (s *Step) Run(ctx context.Context, img image.Image, label string, provider models.Provider) string {
	encoded, err := encodeForUpload(img)
	if err != nil {
		s.logger.Warn("ocr: image encode failed", "error", err)
		return ""
	}

	maxOutputTokens := provider.MaxContextTokens
	if maxOutputTokens < minMaxOutputTokens {
		maxOutputTokens = minMaxOutputTokens
	}
	recommendedTokens := int(float64(maxOutputTokens) * recommendedRatio)
	if recommendedTokens < minRecommended {
		recommendedTokens = minRecommended
	}

	client := llm.NewClient(s.logger, s.metrics)
	client.SetSystemPrompt(systemPromptTemplate)

	prompt := fmt.Sprintf(
		"Transcribe this page (%s). Aim for roughly %d tokens of output and never exceed %d.",
		label, recommendedTokens, maxOutputTokens,
	)
	message := models.LLMMessage{
		Role:          models.RoleUser,
		Content:       prompt,
		ImageBase64:   encoded,
		ImageMimeType: "image/jpeg",
	}

	ch := client.Subscribe()
	defer client.Unsubscribe(ch)

	if err := client.SendMessage(ctx, message, nil, provider); err != nil {
		s.logger.Warn("ocr: send message failed", "error", err)
		return ""
	}

	for {
		select {
		case state := <-ch:
			switch state.Kind {
			case models.ResponseSuccess:
				return strings.TrimSpace(state.Accumulated)
			case models.ResponseError:
				s.logger.Warn("ocr: llm client returned error", "label", label, "message", state.Message)
				return ""
			}
		case <-ctx.Done():
			s.logger.Warn("ocr: request canceled", "label", label, "error", ctx.Err())
			return ""
		}
	}
}
