// Package pagination drives cursor-based fetching of WiGLE search pages.
//
// WiGLE search endpoints paginate with an opaque continuation cursor
// ("searchAfter"): each response's cursor feeds the next request, so page
// fetching is inherently sequential and cannot be parallelized. The fetcher
// walks the cursor chain until the service reports exhaustion, persisting
// every page before the next request is issued.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(source, sink, pagination.DefaultConfig())
//	result, err := fetcher.FetchAll(ctx)
//
// The fetcher:
//   - Persists each page via the sink before advancing (durability first)
//   - Treats an absent cursor, an empty page, or a repeated cursor as
//     exhaustion (stall guard against service loops)
//   - Emits one progress event per page
//   - Returns partial results alongside the error when a page fails
package pagination

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/wigletool/wigle-export/pkg/wigle"
)

// Prometheus metrics for page fetching.
var (
	wiglePagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wigle_pages_fetched_total",
		Help: "Total search pages fetched successfully",
	})

	wigleRecordsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wigle_records_fetched_total",
		Help: "Total records fetched across all pages",
	})

	wigleCursorStallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wigle_cursor_stalls_total",
		Help: "Total fetches terminated by the cursor stall guard",
	})
)

// PageSource fetches and decodes a single search page. The cursor is empty
// for the first request; implementations must pass it through verbatim
// otherwise.
type PageSource interface {
	FetchPage(ctx context.Context, cursor string, pageNum int) (*wigle.Page, error)
}

// PageSink persists a fetched page before the next request is issued.
// It returns the location the page was written to, for progress reporting.
type PageSink interface {
	SavePage(page *wigle.Page) (string, error)
}

// ProgressFunc receives one human-readable event per fetched page.
type ProgressFunc func(msg string)

// Config holds fetcher configuration.
type Config struct {
	// MaxPages bounds the number of pages fetched in one run.
	// Zero or negative means unbounded.
	MaxPages int

	// Progress receives per-page events. Nil disables reporting.
	Progress ProgressFunc
}

// DefaultConfig returns safe default configuration.
func DefaultConfig() Config {
	return Config{
		MaxPages: 0,
	}
}

// Result summarizes a finished (or partially finished) fetch.
type Result struct {
	// Pages is the number of pages durably persisted.
	Pages int

	// Records is the total record count across persisted pages.
	Records int

	// TotalHint is the service's total-count hint from the last page
	// that carried one, or -1. Informational only.
	TotalHint int64
}

// PageError identifies which page of a fetch failed and why.
type PageError struct {
	Page int
	Err  error
}

// Error implements the error interface.
func (e *PageError) Error() string {
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *PageError) Unwrap() error {
	return e.Err
}

// Fetcher walks a search endpoint's cursor chain to exhaustion.
// A Fetcher is single-use: cursors are consumed as it advances, so a
// cancelled fetch cannot be restarted.
type Fetcher struct {
	source PageSource
	sink   PageSink
	config Config
}

// NewFetcher creates a new cursor fetcher.
func NewFetcher(source PageSource, sink PageSink, config Config) *Fetcher {
	return &Fetcher{
		source: source,
		sink:   sink,
		config: config,
	}
}

// FetchAll fetches pages until exhaustion, cancellation, the page bound,
// or an error. Pages already persisted stay persisted regardless of how
// the fetch ends; on error the returned Result covers them and the error
// is a *PageError identifying the failed page.
func (f *Fetcher) FetchAll(ctx context.Context) (Result, error) {
	result := Result{TotalHint: -1}

	cursor := ""
	for pageNum := 1; ; pageNum++ {
		if f.config.MaxPages > 0 && pageNum > f.config.MaxPages {
			log.Info().
				Int("max_pages", f.config.MaxPages).
				Msg("Page bound reached")
			return result, nil
		}

		// Cancellation is checked at the page boundary, before the
		// next request is issued.
		select {
		case <-ctx.Done():
			log.Warn().
				Int("pages", result.Pages).
				Msg("Fetch cancelled")
			return result, ctx.Err()
		default:
		}

		page, err := f.source.FetchPage(ctx, cursor, pageNum)
		if err != nil {
			return result, &PageError{Page: pageNum, Err: err}
		}

		if len(page.Records) == 0 {
			// Exhaustion. A cursor on an empty page would loop
			// forever, so it is ignored.
			return result, nil
		}

		// Durability before the next request.
		path, err := f.sink.SavePage(page)
		if err != nil {
			return result, &PageError{Page: pageNum, Err: err}
		}

		result.Pages++
		result.Records += len(page.Records)
		if page.TotalResults >= 0 {
			result.TotalHint = page.TotalResults
		}

		wiglePagesFetchedTotal.Inc()
		wigleRecordsFetchedTotal.Add(float64(len(page.Records)))

		f.progress(fmt.Sprintf("Page %d: %d results saved: %s", pageNum, len(page.Records), path))
		log.Debug().
			Int("page", pageNum).
			Int("records", len(page.Records)).
			Msg("Page persisted")

		if page.Cursor == "" {
			return result, nil
		}
		if page.Cursor == cursor {
			// Stall guard: the service repeated a cursor. Advancing
			// would refetch the same page forever.
			wigleCursorStallsTotal.Inc()
			log.Warn().
				Int("page", pageNum).
				Msg("Cursor repeated, treating as exhaustion")
			return result, nil
		}
		cursor = page.Cursor
	}
}

func (f *Fetcher) progress(msg string) {
	if f.config.Progress != nil {
		f.config.Progress(msg)
	}
}
