package runner

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wigletool/wigle-export/internal/export"
	"github.com/wigletool/wigle-export/internal/flatten"
	"github.com/wigletool/wigle-export/internal/pagestore"
	"github.com/wigletool/wigle-export/pkg/client"
	"github.com/wigletool/wigle-export/pkg/pagination"
	"github.com/wigletool/wigle-export/pkg/wigle"
)

// searchSource adapts the client to the pagination fetcher for one search
// endpoint. Each request carries the caller's filters plus the page size
// and, after the first page, the previous response's cursor.
type searchSource struct {
	client   *client.Client
	path     string
	params   url.Values
	pageSize int
}

func (s *searchSource) FetchPage(ctx context.Context, cursor string, pageNum int) (*wigle.Page, error) {
	params := cloneValues(s.params)
	if s.pageSize > 0 {
		params.Set("resultsPerPage", strconv.Itoa(s.pageSize))
	}
	if cursor != "" {
		params.Set("searchAfter", cursor)
	}

	body, err := s.client.Get(ctx, s.path, params)
	if err != nil {
		return nil, err
	}
	return wigle.DecodeSearchPage(body, pageNum)
}

// Search runs the full search pipeline for one kind: count probe, cursor
// pagination into the page store, flatten, export, conditional cleanup,
// and a single terminal summary event.
//
// Authorization failures abort immediately and are returned. A page-level
// fetch failure or cancellation ends pagination but the pages already
// persisted are still exported; the failure is recorded on the result.
func (r *Runner) Search(ctx context.Context, kind wigle.SearchKind, params url.Values) (*RunResult, error) {
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	path, err := kind.SearchPath()
	if err != nil {
		return nil, err
	}

	basename := fmt.Sprintf("%s-%s", kind.FilePrefix(), r.rc.RunTag)
	dir := filepath.Join(r.rc.OutputRoot, basename)

	store, err := pagestore.New(dir, basename)
	if err != nil {
		// Unwritable output root is fatal for the whole run.
		return nil, err
	}
	r.progress(fmt.Sprintf("Output folder: %s", dir))

	r.probeTotal(ctx, path, params)

	source := &searchSource{
		client:   r.client,
		path:     path,
		params:   params,
		pageSize: r.rc.PageSize,
	}
	fetcher := pagination.NewFetcher(source, store, pagination.Config{
		MaxPages: r.rc.MaxPages,
		Progress: pagination.ProgressFunc(r.progress),
	})

	fetchResult, fetchErr := fetcher.FetchAll(ctx)
	if client.IsAuthError(fetchErr) {
		r.progress(fmt.Sprintf("Aborted: %v", fetchErr))
		return nil, fetchErr
	}

	result := &RunResult{
		Pages:     fetchResult.Pages,
		Records:   fetchResult.Records,
		TotalHint: fetchResult.TotalHint,
		OutputDir: dir,
		FetchErr:  fetchErr,
	}
	if fetchErr != nil {
		r.progress(fmt.Sprintf("Fetch stopped: %v", fetchErr))
	}

	r.export(store, result)
	r.cleanup(store, result, false)
	r.summarize("Search", result)

	return result, nil
}

// probeTotal asks the endpoint for its total-count hint with a minimal
// single-result request. The hint is informational only; failures are
// reported and ignored (termination is driven by cursor exhaustion).
func (r *Runner) probeTotal(ctx context.Context, path string, params url.Values) {
	probe := cloneValues(params)
	probe.Set("resultsPerPage", "1")

	body, err := r.client.Get(ctx, path, probe)
	if err != nil {
		r.progress(fmt.Sprintf("Count check failed: %v", err))
		return
	}
	page, err := wigle.DecodeSearchPage(body, 0)
	if err != nil || page.TotalResults < 0 {
		r.progress("Total in source: unknown")
		return
	}
	r.progress(fmt.Sprintf("Total in source: %d", page.TotalResults))
}

// export flattens the store's pages and writes the enabled artifacts.
// Each artifact failure is local: it is recorded and the remaining
// artifacts still attempt to complete.
func (r *Runner) export(store *pagestore.Store, result *RunResult) {
	if !r.rc.CSV && !r.rc.KML {
		return
	}

	records := r.loadValues(store)
	table := r.engine.Table(records)

	if r.rc.CSV {
		path := filepath.Join(store.Dir(), store.Basename()+".csv")
		switch err := export.WriteCSV(path, table); {
		case err == nil:
			result.CSVPath = path
			r.progress(fmt.Sprintf("Full CSV exported: %s", path))
		case err == export.ErrNoData:
			r.progress("CSV export: no rows.")
		default:
			result.ExportErrs = append(result.ExportErrs, fmt.Errorf("csv export: %w", err))
			r.progress(fmt.Sprintf("CSV export failed: %v", err))
		}
	}

	if r.rc.KML {
		points := r.engine.Points(table)
		path := filepath.Join(store.Dir(), store.Basename()+".kml")
		switch err := export.WriteKML(path, table.Columns, points); {
		case err == nil:
			result.KMLPath = path
			r.progress(fmt.Sprintf("KML exported: %s", path))
		case err == export.ErrNoData:
			r.progress("KML export: no points with lat/lon.")
		default:
			result.ExportErrs = append(result.ExportErrs, fmt.Errorf("kml export: %w", err))
			r.progress(fmt.Sprintf("KML export failed: %v", err))
		}
	}
}

// loadValues replays the store's page files into ordered record values
// for flattening.
func (r *Runner) loadValues(store *pagestore.Store) []flatten.Value {
	var records []flatten.Value
	for _, path := range store.Files() {
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn().Err(err).Str("file", path).Msg("Failed to read page file")
			continue
		}
		recs, err := flatten.ParseRecords(data)
		if err != nil {
			r.logger.Warn().Err(err).Str("file", path).Msg("Failed to parse page file")
			continue
		}
		records = append(records, recs...)
	}
	return records
}

// cleanup applies the retention policy after exports. In detail mode with
// retention enabled the page files are merged into a single JSON array.
func (r *Runner) cleanup(store *pagestore.Store, result *RunResult, mergeOnKeep bool) {
	if r.rc.KeepJSON {
		if mergeOnKeep && len(store.Files()) > 0 {
			merged, err := store.Merge()
			if err != nil {
				r.progress(fmt.Sprintf("Failed to merge raw JSON pages: %v", err))
				return
			}
			result.MergedJSON = merged
			r.progress(fmt.Sprintf("Merged raw JSON saved: %s", merged))
		}
		return
	}
	removed := store.Purge()
	if removed > 0 {
		r.progress(fmt.Sprintf("Cleaned %d temporary JSON file(s).", removed))
	}
}

// summarize emits the run's single terminal event.
func (r *Runner) summarize(label string, result *RunResult) {
	status := "complete"
	if result.FetchErr != nil || len(result.ExportErrs) > 0 {
		status = "completed with errors"
	}
	r.progress(fmt.Sprintf("%s %s: %d page(s), %d record(s), %d artifact(s)",
		label, status, result.Pages, result.Records, result.Artifacts()))
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
