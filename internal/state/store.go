package state

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// DocumentStore persists the portfolio as a single JSON document on disk.
// Forecast determinism depends only on the snapshot contents, not on this
// layout.
type DocumentStore struct {
	path string
}

// NewDocumentStore creates a store rooted at the given file path.
func NewDocumentStore(path string) *DocumentStore {
	return &DocumentStore{path: path}
}

// Load reads and indexes the portfolio document. A missing file yields an
// empty snapshot rather than an error.
func (st *DocumentStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", st.path).Msg("No portfolio document found, starting empty")
			return NewSnapshot(Document{}), nil
		}
		return nil, fmt.Errorf("failed to read portfolio document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio document: %w", err)
	}

	log.Info().
		Str("path", st.path).
		Int("milestones", len(doc.Milestones)).
		Int("work_items", len(doc.WorkItems)).
		Int("risks", len(doc.Risks)).
		Msg("Portfolio document loaded")

	return NewSnapshot(doc), nil
}

// Save writes the document atomically (temp file then rename) so a crashed
// write never leaves a truncated portfolio behind.
func (st *DocumentStore) Save(doc Document) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode portfolio document: %w", err)
	}

	tmpPath := st.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp document: %w", err)
	}

	if err := os.Rename(tmpPath, st.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename portfolio document: %w", err)
	}

	log.Info().Str("path", st.path).Msg("Portfolio document saved")
	return nil
}
