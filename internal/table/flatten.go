package table

import (
	"sort"

	"github.com/wellside/insight/internal/airtable/client"
)

// Reserved column names injected during flattening.
const (
	ColumnID          = "id"
	ColumnCreatedTime = "createdTime"
)

// Flatten converts raw records into a Table. Each record's fields become one
// row, with the record id and creation time injected as extra columns. The
// column set is the union of all keys seen; rows missing a key get nil.
// Malformed records (no readable fields) are skipped and counted, never fatal.
func Flatten(records []client.Record) (Table, int) {
	t := Table{}
	skipped := 0

	seen := map[string]bool{}
	addColumn := func(name string) {
		if !seen[name] {
			seen[name] = true
			t.Columns = append(t.Columns, name)
		}
	}

	for _, rec := range records {
		if rec.Fields == nil {
			skipped++
			continue
		}

		row := make(Row, len(rec.Fields)+2)
		for k, v := range rec.Fields {
			row[k] = v
		}
		row[ColumnID] = rec.ID
		row[ColumnCreatedTime] = rec.CreatedTime

		// Sorted so the column order is reproducible across runs.
		keys := make([]string, 0, len(rec.Fields))
		for k := range rec.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			addColumn(k)
		}
		addColumn(ColumnID)
		addColumn(ColumnCreatedTime)

		t.Rows = append(t.Rows, row)
	}

	// Uniform shape: every row carries every column.
	for _, row := range t.Rows {
		for _, c := range t.Columns {
			if _, ok := row[c]; !ok {
				row[c] = nil
			}
		}
	}

	return t, skipped
}
