// Package chunker implements the sectioning and fixed-window chunking step
// (C6) that turns OCR/extraction output into bounded, overlapping RagChunks.
package chunker

import (
	"strings"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// Sectionize consumes PageText entries in order, splitting on models.SectionSentinel
// wherever it appears on its own line, and returns the resulting SectionText
// list. A trailing, non-blank buffer is flushed at EOF even without a
// trailing sentinel.
func Sectionize(pages []models.PageText) []models.SectionText {
	var sections []models.SectionText
	var buf strings.Builder
	var pageStart, pageEnd *int

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			sections = append(sections, models.SectionText{
				Text:      text,
				PageStart: pageStart,
				PageEnd:   pageEnd,
			})
		}
		buf.Reset()
		pageStart, pageEnd = nil, nil
	}

	for _, page := range pages {
		for _, line := range strings.Split(page.Text, "\n") {
			if line == models.SectionSentinel {
				flush()
				continue
			}
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
			if strings.TrimSpace(line) != "" && page.PageNumber != nil {
				if pageStart == nil {
					p := *page.PageNumber
					pageStart = &p
				}
				p := *page.PageNumber
				pageEnd = &p
			}
		}
	}
	flush()
	return sections
}
