package index

import (
	"context"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/oakbridge-labs/studyrag/internal/embedding/local"
	"github.com/oakbridge-labs/studyrag/internal/embedding/remote"
	"github.com/oakbridge-labs/studyrag/internal/embedding/resolver"
	"github.com/oakbridge-labs/studyrag/internal/ocr"
	"github.com/oakbridge-labs/studyrag/internal/settings"
	"github.com/oakbridge-labs/studyrag/internal/store"
	"github.com/oakbridge-labs/studyrag/pkg/models"
)

type fixedNative struct {
	ok     bool
	vector []float32
}

func (f fixedNative) Loaded() bool                                { return true }
func (f fixedNative) Init(string) (uintptr, bool)                 { return 1, true }
func (f fixedNative) Release(uintptr)                             {}
func (f fixedNative) Embed(_ uintptr, _ string) ([]float32, bool) { return f.vector, f.ok }

type alwaysCapable struct{}

func (alwaysCapable) Is64BitARM() bool            { return true }
func (alwaysCapable) PhysicalMemoryBytes() uint64 { return 16 * 1024 * 1024 * 1024 }

func testAssets(t *testing.T) fs.FS {
	t.Helper()
	return fstest.MapFS{"models/model.gguf": &fstest.MapFile{Data: []byte("fake")}}
}

func newTestBuilder(t *testing.T, sp settings.Provider, embedOK bool) (*Builder, *store.Store) {
	t.Helper()
	eng := local.NewEngine(fixedNative{ok: embedOK, vector: []float32{1, 0, 0}}, nil)
	rc := remote.NewClient(nil)
	r := resolver.New(sp, eng, rc, alwaysCapable{}, testAssets(t), "models/model.gguf", t.TempDir(), nil, nil)
	s, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	b := New(r, s, ocr.New(nil, nil), unavailablePDFRenderer{}, sp, nil, nil)
	return b, s
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestBuildIndex_PlainTextRoundTrip(t *testing.T) {
	sp := settings.Static{Mode: models.EmbeddingModeLocalPreferred}
	b, s := newTestBuilder(t, sp, true)

	path := writeTempFile(t, "hello world, this is a plain text document with some content.")
	doc := models.DocumentDescriptor{ID: "doc1", Path: path, Type: models.DocumentTypePlainText, Name: "doc.txt"}

	var stages []models.BuildStage
	result := b.BuildIndex(context.Background(), doc, func(p models.RagIndexProgress) {
		stages = append(stages, p.Stage)
	})

	if result.ChunkCount == 0 {
		t.Fatalf("ChunkCount = 0, want > 0")
	}
	if stages[len(stages)-1] != models.StageCompleted {
		t.Errorf("last stage = %v, want Completed", stages[len(stages)-1])
	}

	file, ok := s.Load("doc1")
	if !ok {
		t.Fatal("expected index file to be persisted")
	}
	if len(file.Chunks) != result.ChunkCount {
		t.Errorf("persisted chunk count = %d, want %d", len(file.Chunks), result.ChunkCount)
	}
	for _, c := range file.Chunks {
		if len(c.Vector) == 0 {
			t.Errorf("chunk %s has no vector", c.ID)
		}
	}
}

func TestBuildIndex_BlankDocumentEmitsErrorAndNoChunks(t *testing.T) {
	sp := settings.Static{Mode: models.EmbeddingModeLocalPreferred}
	b, s := newTestBuilder(t, sp, true)

	path := writeTempFile(t, "   \n\t  ")
	doc := models.DocumentDescriptor{ID: "doc1", Path: path, Type: models.DocumentTypePlainText}

	var lastStage models.BuildStage
	result := b.BuildIndex(context.Background(), doc, func(p models.RagIndexProgress) { lastStage = p.Stage })

	if lastStage != models.StageError {
		t.Errorf("last stage = %v, want Error", lastStage)
	}
	if result.ChunkCount != 0 {
		t.Errorf("ChunkCount = %d, want 0", result.ChunkCount)
	}
	if s.Exists("doc1") {
		t.Error("expected no index file to be written")
	}
}

func TestBuildIndex_UnconfiguredEmbeddingBackendEmitsError(t *testing.T) {
	sp := settings.Static{Mode: models.EmbeddingModeRemoteOnly}
	eng := local.NewEngine(fixedNative{ok: true, vector: []float32{1, 0, 0}}, nil)
	rc := remote.NewClient(nil)
	r := resolver.New(sp, eng, rc, alwaysCapable{}, testAssets(t), "models/model.gguf", t.TempDir(), nil, nil)
	s, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	b := New(r, s, ocr.New(nil, nil), unavailablePDFRenderer{}, sp, nil, nil)

	path := writeTempFile(t, "some content")
	doc := models.DocumentDescriptor{ID: "doc1", Path: path, Type: models.DocumentTypePlainText}

	var stages []models.BuildStage
	result := b.BuildIndex(context.Background(), doc, func(p models.RagIndexProgress) { stages = append(stages, p.Stage) })

	if result.ChunkCount != 0 {
		t.Errorf("ChunkCount = %d, want 0", result.ChunkCount)
	}
	if stages[0] != models.StagePreparing || stages[len(stages)-1] != models.StageError {
		t.Errorf("stages = %v, want [Preparing ... Error]", stages)
	}
}

func TestBuildIndex_EmbeddingFailureAbortsWithoutWritingIndex(t *testing.T) {
	sp := settings.Static{Mode: models.EmbeddingModeLocalPreferred}
	b, s := newTestBuilder(t, sp, false)

	path := writeTempFile(t, "some content that will be chunked and then fail to embed.")
	doc := models.DocumentDescriptor{ID: "doc1", Path: path, Type: models.DocumentTypePlainText}

	result := b.BuildIndex(context.Background(), doc, func(models.RagIndexProgress) {})

	if result.ChunkCount != 0 {
		t.Errorf("ChunkCount = %d, want 0", result.ChunkCount)
	}
	if s.Exists("doc1") {
		t.Error("expected no index file to be written on embedding failure")
	}
}

func TestBuildIndex_CanceledContextAbortsVectorizing(t *testing.T) {
	sp := settings.Static{Mode: models.EmbeddingModeLocalPreferred}
	b, s := newTestBuilder(t, sp, true)

	path := writeTempFile(t, "some content that will be chunked before cancellation is observed.")
	doc := models.DocumentDescriptor{ID: "doc1", Path: path, Type: models.DocumentTypePlainText}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var lastStage models.BuildStage
	result := b.BuildIndex(ctx, doc, func(p models.RagIndexProgress) { lastStage = p.Stage })

	if lastStage != models.StageError {
		t.Errorf("last stage = %v, want Error", lastStage)
	}
	if result.ChunkCount != 0 {
		t.Errorf("ChunkCount = %d, want 0", result.ChunkCount)
	}
	if s.Exists("doc1") {
		t.Error("expected no index file to be written on cancellation")
	}
}

func TestBuildIndex_PDFRenderFailureIsReportedAsBlankPage(t *testing.T) {
	sp := settings.Static{Mode: models.EmbeddingModeLocalPreferred}
	eng := local.NewEngine(fixedNative{ok: true, vector: []float32{1, 0, 0}}, nil)
	rc := remote.NewClient(nil)
	r := resolver.New(sp, eng, rc, alwaysCapable{}, testAssets(t), "models/model.gguf", t.TempDir(), nil, nil)
	s, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	b := New(r, s, ocr.New(nil, nil), failingPDFRenderer{pages: 2}, sp, nil, nil)

	doc := models.DocumentDescriptor{ID: "doc1", Path: "ignored.pdf", Type: models.DocumentTypePDF}

	var lastStage models.BuildStage
	b.BuildIndex(context.Background(), doc, func(p models.RagIndexProgress) { lastStage = p.Stage })

	if lastStage != models.StageError {
		t.Errorf("last stage = %v, want Error (all pages blank after render failures)", lastStage)
	}
}

type failingPDFRenderer struct{ pages int }

func (f failingPDFRenderer) PageCount(string) (int, error) { return f.pages, nil }
func (f failingPDFRenderer) RenderPage(string, int) (image.Image, error) {
	return nil, errUnavailableRenderer
}
