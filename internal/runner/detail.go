package runner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/wigletool/wigle-export/internal/pagestore"
	"github.com/wigletool/wigle-export/pkg/client"
	"github.com/wigletool/wigle-export/pkg/wigle"
)

// ErrNoResults signals a detail lookup that returned no records. In
// single-detail mode this is an empty-result terminal state; in batch
// mode it is recorded as a per-identifier failure.
var ErrNoResults = errors.New("no results")

// detailParamKeys are the non-netid parameters that can identify a cell
// tower, in the order they join into a file-name stem.
var detailParamKeys = []string{"operator", "lac", "cid", "system", "network", "basestation"}

// Detail runs the single-identifier pipeline: one detail fetch, page
// persistence, location-history flatten, export, cleanup, and a terminal
// summary. The run bundle lives in its own directory under the output
// root.
func (r *Runner) Detail(ctx context.Context, params url.Values) (*RunResult, error) {
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	dir := filepath.Join(r.rc.OutputRoot, "detail-"+r.rc.RunTag)
	result, err := r.detailInto(ctx, dir, params)
	if err != nil {
		if errors.Is(err, ErrNoResults) || client.IsNotFound(err) {
			// An unknown identifier and an empty result body are the
			// same terminal state here: nothing to export.
			r.progress("No results.")
			if result == nil {
				result = &RunResult{OutputDir: dir}
			}
			return result, nil
		}
		return nil, err
	}

	r.summarize("Detail", result)
	return result, nil
}

// detailInto executes one detail pipeline into dir. Shared by Detail and
// the batch orchestrator; the caller owns locking and summary events.
func (r *Runner) detailInto(ctx context.Context, dir string, params url.Values) (*RunResult, error) {
	basename := detailBasename(params)

	body, err := r.client.GetCached(ctx, wigle.DetailPath, params)
	if err != nil {
		return nil, fmt.Errorf("detail request: %w", err)
	}

	records, err := wigle.DecodeDetail(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &RunResult{OutputDir: dir}, ErrNoResults
	}

	store, err := pagestore.New(dir, basename)
	if err != nil {
		return nil, err
	}

	page := &wigle.Page{Number: 1, Records: records}
	path, err := store.SavePage(page)
	if err != nil {
		return nil, err
	}
	r.progress(fmt.Sprintf("Saved raw detail JSON page: %s", path))

	result := &RunResult{
		Pages:     1,
		Records:   len(records),
		TotalHint: -1,
		OutputDir: dir,
	}

	r.export(store, result)
	r.cleanup(store, result, true)

	return result, nil
}

// detailBasename derives the file-name stem for a detail run: the netid
// when present, otherwise the joined cell identifier parameters.
func detailBasename(params url.Values) string {
	if netid := params.Get("netid"); netid != "" {
		return SanitizeIdentifier(netid)
	}

	var parts []string
	for _, k := range detailParamKeys {
		if v := params.Get(k); v != "" {
			parts = append(parts, fmt.Sprintf("%s-%s", k, v))
		}
	}
	if len(parts) == 0 {
		return "detail"
	}
	return SanitizeIdentifier(strings.Join(parts, "_"))
}
