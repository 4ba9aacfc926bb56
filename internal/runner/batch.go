package runner

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/wigletool/wigle-export/pkg/client"
)

// IdentifierError records one failed identifier within a batch.
type IdentifierError struct {
	Identifier string
	Err        error
}

// BatchResult is the aggregate outcome of a multi-identifier batch run.
// It accumulates monotonically until the identifier list is exhausted or
// the batch aborts on an authorization failure.
type BatchResult struct {
	Processed int
	Succeeded int
	Failed    int

	// Artifacts counts the export files produced across all bundles.
	Artifacts int

	// Failures lists the identifiers that failed, in order, with their
	// errors.
	Failures []IdentifierError
}

// Summary renders the single human-readable terminal line for a batch.
func (b *BatchResult) Summary() string {
	return fmt.Sprintf("Batch complete: processed=%d succeeded=%d failed=%d, %d file(s) created",
		b.Processed, b.Succeeded, b.Failed, b.Artifacts)
}

// Batch runs the detail pipeline for each identifier in order, strictly
// sequentially. Failures are isolated per identifier and recorded;
// processing continues past them. An authorization failure aborts the
// remaining identifiers, since it cannot resolve by retrying. Each
// identifier's bundle lives in its own directory under the batch
// directory, keyed by the sanitized identifier.
func (r *Runner) Batch(ctx context.Context, ids []string, baseParams url.Values) (*BatchResult, error) {
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	batchDir := filepath.Join(r.rc.OutputRoot, "detail-"+r.rc.RunTag)
	result := &BatchResult{}

	for i, id := range ids {
		// Identifier boundary: cancellation checked before each
		// pipeline starts.
		select {
		case <-ctx.Done():
			r.progress(result.Summary())
			return result, ctx.Err()
		default:
		}

		r.progress(fmt.Sprintf("[%d/%d] NETID: %s", i+1, len(ids), id))

		params := cloneValues(baseParams)
		params.Set("netid", id)

		dir := filepath.Join(batchDir, SanitizeIdentifier(id))
		runResult, err := r.detailInto(ctx, dir, params)

		result.Processed++
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, IdentifierError{Identifier: id, Err: err})
			r.progress(fmt.Sprintf("Failed: %s: %v", id, err))

			if client.IsAuthError(err) {
				r.logger.Error().Err(err).Msg("Authorization failure, aborting batch")
				r.progress(result.Summary())
				return result, err
			}
			continue
		}

		result.Succeeded++
		result.Artifacts += runResult.Artifacts()
	}

	r.progress(result.Summary())
	return result, nil
}

// ReadIdentifierFile parses a batch input file: one identifier per line,
// blank lines and '#' comments skipped. An empty file is a configuration
// error.
func ReadIdentifierFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("batch file %s contains no identifiers", path)
	}
	return ids, nil
}
