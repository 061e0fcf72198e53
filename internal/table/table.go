// Package table implements the tabular core of the analytics pipeline:
// flattening raw API records into uniformly shaped rows, reconciling drifting
// column names against canonical field specs, coercing column types, deriving
// rate metrics, and filtering.
package table

// Row maps column names to cell values. A cell is a scalar (string, float64,
// bool, time.Time), a list of scalars ([]any), or nil for a missing value.
type Row map[string]any

// Table is an ordered sequence of rows sharing a common column set. Columns
// preserves discovery order; rows missing a column carry an explicit nil.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is in the column set.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn registers a column name, filling existing rows with nil. Adding a
// column that already exists is a no-op.
func (t *Table) AddColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for _, row := range t.Rows {
		if _, ok := row[name]; !ok {
			row[name] = nil
		}
	}
}

// Clone returns a deep-enough copy: rows are copied, cell values are shared.
// Safe because pipeline stages replace cells rather than mutating them.
func (t *Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		nr := make(Row, len(row))
		for k, v := range row {
			nr[k] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Column returns the values of a column in row order, nil-filled where absent.
func (t *Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[name]
	}
	return out
}
