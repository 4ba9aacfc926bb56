// Package pagestore persists raw JSON pages for one run and owns their
// lifecycle: append during the fetch, replay for export, and purge or
// merge once exports complete.
package pagestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/wigletool/wigle-export/pkg/logging"
	"github.com/wigletool/wigle-export/pkg/wigle"
)

// Store holds the page files of a single run. It is append-only while the
// fetch is active and is owned exclusively by the run that created it.
type Store struct {
	dir      string
	basename string
	files    []string
	logger   zerolog.Logger
}

// New creates a store writing page files named "{basename}-page_{N}.json"
// under dir. The directory is created if needed; failure to create it is
// an unrecoverable configuration error for the run.
func New(dir, basename string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{
		dir:      dir,
		basename: basename,
		logger:   logging.NewLogger("pagestore"),
	}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Basename returns the file-name stem shared by this run's artifacts.
func (s *Store) Basename() string {
	return s.basename
}

// SavePage writes one page's records as a compact JSON array and tracks
// the file for later replay or cleanup. Implements pagination.PageSink.
func (s *Store) SavePage(page *wigle.Page) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s-page_%d.json", s.basename, page.Number))

	data, err := json.Marshal(page.Records)
	if err != nil {
		return "", fmt.Errorf("encode page %d: %w", page.Number, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write page %d: %w", page.Number, err)
	}

	s.files = append(s.files, path)
	return path, nil
}

// Files returns the page file paths in page order, skipping any that no
// longer exist on disk.
func (s *Store) Files() []string {
	var out []string
	for _, p := range s.files {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// RawRecords replays every page in order and returns the full raw record
// sequence, byte-for-byte as fetched. Pages that fail to parse are
// skipped with a warning rather than aborting the export.
func (s *Store) RawRecords() []json.RawMessage {
	var records []json.RawMessage
	for _, path := range s.Files() {
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", path).Msg("Failed to read page file")
			continue
		}
		var page []json.RawMessage
		if err := json.Unmarshal(data, &page); err != nil {
			s.logger.Warn().Err(err).Str("file", path).Msg("Failed to parse page file")
			continue
		}
		records = append(records, page...)
	}
	return records
}

// Purge deletes all page files and returns how many were removed.
// Used when retention is disabled once exports have completed.
func (s *Store) Purge() int {
	removed := 0
	for _, p := range s.files {
		if err := os.Remove(p); err == nil {
			removed++
		}
	}
	s.files = nil
	return removed
}

// Merge collapses all page files into a single "{basename}.json" array and
// removes the per-page files. Returns the merged file path. Used in detail
// mode when raw JSON retention is requested.
func (s *Store) Merge() (string, error) {
	records := s.RawRecords()
	if len(records) == 0 {
		return "", fmt.Errorf("no records to merge")
	}

	path := filepath.Join(s.dir, s.basename+".json")
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode merged records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write merged records: %w", err)
	}

	for _, p := range s.files {
		_ = os.Remove(p)
	}
	s.files = nil

	return path, nil
}
