package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wigletool/wigle-export/internal/flatten"
)

// Prometheus metrics for export operations.
var (
	wigleExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wigle_exports_total",
		Help: "Total export artifacts written by format",
	}, []string{"format"})

	wigleExportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wigle_export_rows_total",
		Help: "Total rows/placemarks written by format",
	}, []string{"format"})
)

// WriteCSV writes a table to path: the header is the discovered column
// union in first-seen order, followed by the rows in source order, with
// absent cells empty. A table with zero rows writes nothing and returns
// ErrNoData. Re-running over identical input produces a byte-identical
// file.
func WriteCSV(path string, t *flatten.Table) error {
	if len(t.Rows) == 0 || len(t.Columns) == 0 {
		return ErrNoData
	}

	err := writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)

		if err := w.Write(t.Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		cells := make([]string, len(t.Columns))
		for i, row := range t.Rows {
			for j, col := range t.Columns {
				cells[j] = row.Get(col)
			}
			if err := w.Write(cells); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}

		w.Flush()
		return w.Error()
	})
	if err != nil {
		return err
	}

	wigleExportsTotal.WithLabelValues("csv").Inc()
	wigleExportRowsTotal.WithLabelValues("csv").Add(float64(len(t.Rows)))
	return nil
}
