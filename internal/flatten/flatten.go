package flatten

import (
	"strings"
)

// Row is one fully flattened, single-level view of a record (or of one
// location item within it). Columns remember first-seen order; setting an
// existing column overwrites the value but keeps its position.
type Row struct {
	cols []string
	vals map[string]string
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{vals: make(map[string]string)}
}

// Set stores a column value, tracking first-seen column order.
func (r *Row) Set(col, val string) {
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = val
}

// Get returns the value for a column, or "" when absent.
func (r *Row) Get(col string) string {
	return r.vals[col]
}

// Has reports whether the row carries a value for the column.
func (r *Row) Has(col string) bool {
	_, ok := r.vals[col]
	return ok
}

// Columns returns the row's column names in first-seen order.
func (r *Row) Columns() []string {
	return r.cols
}

// clone copies the row so location expansion can overlay item fields
// without mutating the shared base.
func (r *Row) clone() *Row {
	c := &Row{
		cols: append([]string(nil), r.cols...),
		vals: make(map[string]string, len(r.vals)),
	}
	for k, v := range r.vals {
		c.vals[k] = v
	}
	return c
}

// Table is the tabular view of a record sequence: the insertion-order
// column union and the rows in source order.
type Table struct {
	Columns []string
	Rows    []*Row
}

// Options configures the flattening rules.
type Options struct {
	// PathSep joins nested mapping keys into column names.
	PathSep string

	// SeqSep joins sequences of scalars into a single cell.
	SeqSep string

	// LocationKeys name the top-level members holding location history.
	// Each item of such a sequence expands into its own row inheriting
	// the record's remaining fields. Other sequences of mappings render
	// as compact JSON cells.
	LocationKeys []string
}

// DefaultOptions returns the flattening rules used by the exporters.
func DefaultOptions() Options {
	return Options{
		PathSep:      ".",
		SeqSep:       ";",
		LocationKeys: []string{"locationData", "locations"},
	}
}

// Engine flattens record sequences. Safe for reuse across runs.
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options. Zero-value option
// fields fall back to the defaults.
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.PathSep == "" {
		opts.PathSep = def.PathSep
	}
	if opts.SeqSep == "" {
		opts.SeqSep = def.SeqSep
	}
	if opts.LocationKeys == nil {
		opts.LocationKeys = def.LocationKeys
	}
	return &Engine{opts: opts}
}

// Table flattens an ordered record sequence into rows and the
// insertion-order column union. Records with location history expand into
// one row per location item; location rows lacking a coordinate pair are
// dropped. A record with no (or empty) location history contributes
// exactly one row of its remaining fields. An empty record sequence
// yields an empty column set and zero rows.
func (e *Engine) Table(records []Value) *Table {
	t := &Table{}
	seen := make(map[string]bool)

	for _, rec := range records {
		if rec.Kind != KindMapping {
			continue
		}
		for _, row := range e.rowsForRecord(rec) {
			for _, col := range row.Columns() {
				if !seen[col] {
					seen[col] = true
					t.Columns = append(t.Columns, col)
				}
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// rowsForRecord expands one record into its flat rows.
func (e *Engine) rowsForRecord(rec Value) []*Row {
	base := NewRow()
	for _, m := range rec.Members {
		if e.isLocationKey(m.Key) {
			continue
		}
		e.flattenInto(base, m.Key, m.Value)
	}

	items := e.locationItems(rec)
	if len(items) == 0 {
		return []*Row{base}
	}

	var rows []*Row
	for _, item := range items {
		row := base.clone()
		for _, m := range item.Members {
			e.flattenInto(row, m.Key, m.Value)
		}
		if _, _, ok := resolveCoords(row); !ok {
			// Location observations without a usable coordinate
			// pair carry no information worth a row.
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// locationItems returns the mapping items of the record's first present
// location-history member.
func (e *Engine) locationItems(rec Value) []Value {
	for _, key := range e.opts.LocationKeys {
		v, ok := rec.Get(key)
		if !ok {
			continue
		}
		switch v.Kind {
		case KindSequence:
			var items []Value
			for _, elem := range v.Seq {
				if elem.Kind == KindMapping {
					items = append(items, elem)
				}
			}
			return items
		case KindMapping:
			// A bare object counts as a single-entry history.
			return []Value{v}
		}
	}
	return nil
}

func (e *Engine) isLocationKey(key string) bool {
	for _, k := range e.opts.LocationKeys {
		if k == key {
			return true
		}
	}
	return false
}

// flattenInto walks one value depth-first, emitting (path, value) cells.
func (e *Engine) flattenInto(row *Row, path string, v Value) {
	switch v.Kind {
	case KindScalar:
		row.Set(path, scalarString(v.Scalar))
	case KindMapping:
		if len(v.Members) == 0 {
			row.Set(path, "")
			return
		}
		for _, m := range v.Members {
			e.flattenInto(row, path+e.opts.PathSep+m.Key, m.Value)
		}
	case KindSequence:
		if allScalars(v.Seq) {
			parts := make([]string, len(v.Seq))
			for i, elem := range v.Seq {
				parts[i] = scalarString(elem.Scalar)
			}
			row.Set(path, strings.Join(parts, e.opts.SeqSep))
			return
		}
		row.Set(path, encodeJSON(v))
	}
}

func allScalars(seq []Value) bool {
	for _, v := range seq {
		if v.Kind != KindScalar {
			return false
		}
	}
	return true
}
