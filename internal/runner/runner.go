// Package runner orchestrates the fetch-accumulate-flatten-export
// pipeline: one search or detail run end to end, and sequential batches
// of detail runs. It owns run lifecycle (output directories, page
// retention, terminal summary) and leaves HTTP to pkg/client, pagination
// to pkg/pagination, and flattening to internal/flatten.
package runner

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wigletool/wigle-export/internal/flatten"
	"github.com/wigletool/wigle-export/pkg/client"
	"github.com/wigletool/wigle-export/pkg/logging"
)

// ProgressFunc receives human-readable status events: one per fetched
// page, one per export artifact or cleanup action, and exactly one
// terminal summary per run. The text format is owned by the consumer's
// display layer; nothing downstream parses it.
type ProgressFunc func(msg string)

// RunContext is the immutable configuration for one run. It is built once
// per run and shared read-only by every component, so concurrent runs
// with different contexts cannot interfere through ambient state.
type RunContext struct {
	// OutputRoot is the parent directory run bundles are created under.
	OutputRoot string

	// RunTag is the unique naming token for this run, usually a unix
	// timestamp. Re-running with the same tag deliberately overwrites.
	RunTag string

	// CSV enables tabular export.
	CSV bool

	// KML enables geo export.
	KML bool

	// KeepJSON retains the raw page files after export. When false the
	// page files are purged once exports complete.
	KeepJSON bool

	// PageSize is the resultsPerPage hint sent to search endpoints.
	PageSize int

	// MaxPages bounds pagination. Zero means unbounded.
	MaxPages int

	// Progress receives status events. Nil discards them.
	Progress ProgressFunc
}

// NewRunContext returns a context with the defaults the CLI uses: current
// unix timestamp as the run tag and the API's standard page size.
func NewRunContext(outputRoot string) RunContext {
	return RunContext{
		OutputRoot: outputRoot,
		RunTag:     fmt.Sprintf("%d", time.Now().Unix()),
		PageSize:   100,
	}
}

// RunResult describes one finished fetch target: what was fetched and
// which artifacts the run bundle holds.
type RunResult struct {
	Pages     int
	Records   int
	TotalHint int64

	// OutputDir is the run bundle directory.
	OutputDir string

	// CSVPath and KMLPath are set when the artifact was written.
	CSVPath string
	KMLPath string

	// MergedJSON is set in detail mode when page files were merged.
	MergedJSON string

	// FetchErr records a non-fatal page-level fetch failure. Pages
	// fetched before it stayed durable and were exported.
	FetchErr error

	// ExportErrs records per-artifact export failures; each is local to
	// its artifact.
	ExportErrs []error
}

// Artifacts returns the count of export artifacts produced.
func (r *RunResult) Artifacts() int {
	n := 0
	if r.CSVPath != "" {
		n++
	}
	if r.KMLPath != "" {
		n++
	}
	if r.MergedJSON != "" {
		n++
	}
	return n
}

// Runner executes runs against one WiGLE client. At most one run may be
// active per Runner, matching the one-writer-per-output-context rule.
type Runner struct {
	client *client.Client
	engine *flatten.Engine
	rc     RunContext
	logger zerolog.Logger

	mu sync.Mutex
}

// New creates a runner for the given client and run context.
func New(cli *client.Client, rc RunContext) *Runner {
	return &Runner{
		client: cli,
		engine: flatten.NewEngine(flatten.DefaultOptions()),
		rc:     rc,
		logger: logging.NewLogger("runner"),
	}
}

// acquire claims the runner for one run.
func (r *Runner) acquire() error {
	if !r.mu.TryLock() {
		return fmt.Errorf("a run is already active for this output context")
	}
	return nil
}

func (r *Runner) progress(msg string) {
	if r.rc.Progress != nil {
		r.rc.Progress(msg)
	}
}

var identifierSanitizer = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeIdentifier converts an identifier (BSSID, cell ID triple, ...)
// into a filesystem-safe file-name stem. Colons are dropped so MAC
// addresses collapse to their hex digits; any other run of unsafe
// characters becomes a single underscore.
func SanitizeIdentifier(id string) string {
	s := strings.ReplaceAll(id, ":", "")
	s = identifierSanitizer.ReplaceAllString(s, "_")
	if s == "" {
		return "detail"
	}
	return s
}
