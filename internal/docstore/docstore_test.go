package docstore

import (
	"path/filepath"
	"testing"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

func TestMap_GetDocument(t *testing.T) {
	m := Map{"doc1": {ID: "doc1", Path: "a.txt", Type: models.DocumentTypePlainText}}
	doc, ok := m.GetDocument("doc1")
	if !ok || doc.Path != "a.txt" {
		t.Errorf("GetDocument(doc1) = %+v, %v", doc, ok)
	}
	if _, ok := m.GetDocument("missing"); ok {
		t.Error("GetDocument(missing) = ok, want not found")
	}
}

func TestLoadMap_MissingFileReturnsEmptyMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	catalog, err := LoadMap(path)
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if len(catalog) != 0 {
		t.Errorf("catalog = %v, want empty", catalog)
	}
}

func TestSaveMapThenLoadMap_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	catalog := Map{
		"doc1": {ID: "doc1", Path: "a.pdf", Type: models.DocumentTypePDF, Name: "A"},
	}
	if err := SaveMap(path, catalog); err != nil {
		t.Fatalf("SaveMap: %v", err)
	}

	got, err := LoadMap(path)
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	doc, ok := got.GetDocument("doc1")
	if !ok || doc != catalog["doc1"] {
		t.Errorf("round-tripped doc = %+v, %v, want %+v", doc, ok, catalog["doc1"])
	}
}
