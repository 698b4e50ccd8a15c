package chunker

import (
	"strings"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

const (
	maxChars = 800
	overlap  = 120
)

// Chunk sections into bounded, overlapping RagChunks. Ordinals are dense,
// zero-based, and assigned across the whole document in section order.
func Chunk(docID string, sections []models.SectionText) []models.RagChunk {
	var chunks []models.RagChunk
	ordinal := 0
	for _, section := range sections {
		for _, text := range windows(section.Text) {
			chunks = append(chunks, models.RagChunk{
				ID:        models.ChunkID(docID, ordinal),
				DocID:     docID,
				Text:      text,
				PageStart: section.PageStart,
				PageEnd:   section.PageEnd,
			})
			ordinal++
		}
	}
	return chunks
}

// windows splits text into chunks of at most maxChars characters with
// overlap, preferring to break at a line boundary in the back half of the
// window. Positions are counted in runes, not bytes, since the teacher and
// this spec both treat "characters" as code points.
func windows(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var out []string
	start := 0
	for {
		end := start + maxChars
		if end > n {
			end = n
		}
		if end < n {
			if breakAt, ok := lastNewline(runes, start+maxChars/2, end); ok {
				end = breakAt
			}
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			out = append(out, piece)
		}

		if end == n {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return out
}

// lastNewline searches runes[lowerBound:upperBound] backward for the last
// '\n' strictly past lowerBound, returning its index as an end-of-window cut
// point (so the newline itself is excluded from the chunk).
func lastNewline(runes []rune, lowerBound, upperBound int) (int, bool) {
	for i := upperBound - 1; i > lowerBound; i-- {
		if runes[i] == '\n' {
			return i, true
		}
	}
	return 0, false
}
