// Package docstore defines the document-store collaborator: an external
// system that owns document import, file copying, and category metadata.
// The indexing subsystem only ever reads descriptors through this
// interface.
package docstore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// Store resolves a document id to the descriptor the index builder needs
// to locate and classify the underlying file.
type Store interface {
	// GetDocument returns the descriptor for id, or ok=false if unknown.
	GetDocument(id string) (doc models.DocumentDescriptor, ok bool)
}

// Map is a Store backed by an in-memory map, useful for tests and for
// hosts that keep their document catalog resident.
type Map map[string]models.DocumentDescriptor

var _ Store = Map(nil)

func (m Map) GetDocument(id string) (models.DocumentDescriptor, bool) {
	doc, ok := m[id]
	return doc, ok
}

// LoadMap reads a catalog previously written by SaveMap. A missing file
// returns an empty, non-nil Map rather than an error, so a first-time
// "register" call has somewhere to insert into.
func LoadMap(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Map{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: read %s: %w", path, err)
	}

	var catalog Map
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("docstore: parse %s: %w", path, err)
	}
	if catalog == nil {
		catalog = Map{}
	}
	return catalog, nil
}

// SaveMap writes the catalog to path as JSON.
func SaveMap(path string, catalog Map) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("docstore: write %s: %w", path, err)
	}
	return nil
}
