// Package store implements the index store (C9): a thin per-document JSON
// persistence layer under a dedicated directory. A corrupt or unreadable
// file is treated as "not indexed" rather than surfaced as an error.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// Store persists RagIndexFile values, one JSON file per document, under
// dir/rag_index_<docId>.json.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger.With("component", "index-store")}, nil
}

func (s *Store) path(docID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("rag_index_%s.json", docID))
}

// Exists reports whether docID has a persisted index file.
func (s *Store) Exists(docID string) bool {
	_, err := os.Stat(s.path(docID))
	return err == nil
}

// Remove deletes docID's index file, if any. Removing a file that does not
// exist is not an error.
func (s *Store) Remove(docID string) error {
	err := os.Remove(s.path(docID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remove %s: %w", docID, err)
	}
	return nil
}

// Save serializes file to docID's path atomically: written to a temp file
// in the same directory, then renamed over the target. On any failure the
// prior file, if one existed, is left untouched.
func (s *Store) Save(docID string, file models.RagIndexFile) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", docID, err)
	}

	target := s.path(docID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", docID, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: rename %s: %w", docID, err)
	}
	return nil
}

// Load reads docID's index file. A missing, corrupt, or wrong-schema-version
// file returns (zero, false) rather than an error; callers treat the
// document as unindexed.
func (s *Store) Load(docID string) (models.RagIndexFile, bool) {
	data, err := os.ReadFile(s.path(docID))
	if err != nil {
		return models.RagIndexFile{}, false
	}

	var file models.RagIndexFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.logger.Warn("corrupt index file", "doc_id", docID, "error", err)
		return models.RagIndexFile{}, false
	}
	if file.Version != models.IndexSchemaVersion {
		s.logger.Warn("unsupported index schema version", "doc_id", docID, "version", file.Version)
		return models.RagIndexFile{}, false
	}
	return file, true
}
