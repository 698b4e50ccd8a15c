package chunker

import (
	"strings"
	"testing"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

func TestSectionize_SentinelDrivenSectioning(t *testing.T) {
	page := func(n int, text string) models.PageText {
		p := n
		return models.PageText{PageNumber: &p, Text: text}
	}
	pages := []models.PageText{
		page(1, "Section A\n[[SECTION_END]]"),
		page(2, "Section B line 1\nSection B line 2\n[[SECTION_END]]"),
		page(3, "Tail"),
	}

	sections := Sectionize(pages)
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}
	want := []string{"Section A", "Section B line 1\nSection B line 2", "Tail"}
	for i, w := range want {
		if sections[i].Text != w {
			t.Errorf("section %d = %q, want %q", i, sections[i].Text, w)
		}
		if strings.Contains(sections[i].Text, "[[SECTION_END]]") {
			t.Errorf("section %d contains sentinel", i)
		}
	}
}

func TestSectionize_FlushesTrailingBufferAtEOF(t *testing.T) {
	p := 1
	pages := []models.PageText{{PageNumber: &p, Text: "no sentinel here"}}
	sections := Sectionize(pages)
	if len(sections) != 1 || sections[0].Text != "no sentinel here" {
		t.Fatalf("got %+v", sections)
	}
}

func TestSectionize_PageStartEndTrackNonBlankContributors(t *testing.T) {
	p1, p2, p3 := 1, 2, 3
	pages := []models.PageText{
		{PageNumber: &p1, Text: ""},
		{PageNumber: &p2, Text: "body"},
		{PageNumber: &p3, Text: ""},
	}
	sections := Sectionize(pages)
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if sections[0].PageStart == nil || *sections[0].PageStart != 2 {
		t.Errorf("pageStart = %v, want 2", sections[0].PageStart)
	}
	if sections[0].PageEnd == nil || *sections[0].PageEnd != 2 {
		t.Errorf("pageEnd = %v, want 2", sections[0].PageEnd)
	}
}

func TestChunk_WindowEdges(t *testing.T) {
	text := strings.Repeat("a", 1600)
	sections := []models.SectionText{{Text: text}}
	chunks := Chunk("doc1", sections)

	wantLens := []int{800, 800, 240}
	if len(chunks) != len(wantLens) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(wantLens))
	}
	for i, want := range wantLens {
		if len(chunks[i].Text) != want {
			t.Errorf("chunk %d length = %d, want %d", i, len(chunks[i].Text), want)
		}
	}
}

func TestChunk_PrefersLineBreakInBackHalf(t *testing.T) {
	// A newline placed inside the back half of the first window should be
	// preferred over the raw maxChars cut point.
	text := strings.Repeat("a", 750) + "\n" + strings.Repeat("b", 200)
	sections := []models.SectionText{{Text: text}}
	chunks := Chunk("doc1", sections)
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	if chunks[0].Text != strings.Repeat("a", 750) {
		t.Errorf("first chunk = %q (len %d), want the 750 a's broken at the newline", chunks[0].Text[:10], len(chunks[0].Text))
	}
}

func TestChunk_IDsAreDenseZeroBasedOrdinals(t *testing.T) {
	sections := []models.SectionText{{Text: "short one"}, {Text: "short two"}}
	chunks := Chunk("docX", sections)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].ID != "chunk_docX_0" || chunks[1].ID != "chunk_docX_1" {
		t.Errorf("ids = %q, %q", chunks[0].ID, chunks[1].ID)
	}
}

func TestChunk_NoEmptyOrUntrimmedChunks(t *testing.T) {
	sections := []models.SectionText{{Text: "   \n\n  "}}
	chunks := Chunk("doc1", sections)
	if len(chunks) != 0 {
		t.Fatalf("got %d chunks from blank section, want 0", len(chunks))
	}
}

func TestChunk_Idempotence(t *testing.T) {
	text := strings.Repeat("word ", 400)
	first := Chunk("doc1", []models.SectionText{{Text: text}})

	// Re-chunking one already-bounded chunk should yield exactly that chunk
	// again, with the same content.
	var rejoined strings.Builder
	for i, c := range first {
		if i > 0 {
			rejoined.WriteString(" ")
		}
		rejoined.WriteString(c.Text)
	}
	second := Chunk("doc1", []models.SectionText{{Text: first[0].Text}})
	if len(second) != 1 {
		t.Fatalf("re-chunking a single already-bounded chunk should yield 1 chunk, got %d", len(second))
	}
	if second[0].Text != first[0].Text {
		t.Errorf("re-chunked text mismatch")
	}
}
