// Package export writes the tabular (CSV) and geo (KML) artifacts for a
// run. Both exporters are idempotent and atomic: output is staged to a
// temporary file and renamed into place, so a failed export never leaves
// a partial file as the final artifact.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoData signals that the export produced no data rows and no file was
// written. Per the pipeline's documented empty-result behavior this is a
// terminal state, not a failure.
var ErrNoData = errors.New("no data to export")

// writeAtomic stages content through a temp file in the destination
// directory and renames it over the final path.
func writeAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize %s: %w", filepath.Base(path), err)
	}
	return nil
}
