package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FilterKind selects the matching behavior of a Filter.
type FilterKind int

const (
	// FilterCategorical keeps rows whose cell (or any list element) is a
	// member of Values. The sentinel "All" disables the filter.
	FilterCategorical FilterKind = iota
	// FilterDateRange keeps rows whose cell falls within [Start, End].
	FilterDateRange
	// FilterNumericRange keeps rows whose cell falls within [Min, Max].
	FilterNumericRange
	// FilterSubstring keeps rows whose cell contains Substring,
	// case-insensitively. The literal "all" disables the filter.
	FilterSubstring
	// FilterBoolean keeps rows whose cell equals Bool, falling back to a
	// case-insensitive string comparison for mixed-type columns.
	FilterBoolean
)

func (k FilterKind) String() string {
	switch k {
	case FilterCategorical:
		return "categorical"
	case FilterDateRange:
		return "date_range"
	case FilterNumericRange:
		return "numeric_range"
	case FilterSubstring:
		return "substring"
	case FilterBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Filter is one conjunct of a filter set. Only the fields relevant to Kind
// are consulted.
type Filter struct {
	Column string
	Kind   FilterKind

	Values     []string  // FilterCategorical
	Start, End time.Time // FilterDateRange, inclusive
	Min, Max   float64   // FilterNumericRange, inclusive
	Substring  string    // FilterSubstring
	Bool       bool      // FilterBoolean
}

// FilterReport records the effect of one filter, for UI diagnostics.
type FilterReport struct {
	Column  string
	Kind    FilterKind
	Before  int
	After   int
	Skipped bool
	Reason  string
}

// Eliminated returns how many rows this filter removed.
func (r FilterReport) Eliminated() int {
	return r.Before - r.After
}

// AllSentinel is the categorical/substring value meaning "no restriction".
const AllSentinel = "All"

// ApplyFilters narrows a table by every filter in turn (logical AND) and
// reports the per-filter effect. A filter referencing an absent column, or a
// column that cannot be interpreted in the filter's domain, is skipped with
// a report entry rather than an error. The input table is not modified.
func ApplyFilters(t Table, filters []Filter) (Table, []FilterReport) {
	current := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    append([]Row(nil), t.Rows...),
	}

	reports := make([]FilterReport, 0, len(filters))

	for _, f := range filters {
		report := FilterReport{Column: f.Column, Kind: f.Kind, Before: len(current.Rows)}

		if !current.HasColumn(f.Column) {
			report.After = len(current.Rows)
			report.Skipped = true
			report.Reason = "column not present"
			reports = append(reports, report)
			continue
		}

		var kept []Row
		skippedReason := ""

		switch f.Kind {
		case FilterCategorical:
			kept, skippedReason = filterCategorical(current.Rows, f)
		case FilterDateRange:
			kept, skippedReason = filterDateRange(current.Rows, f)
		case FilterNumericRange:
			kept, skippedReason = filterNumericRange(current.Rows, f)
		case FilterSubstring:
			kept, skippedReason = filterSubstring(current.Rows, f)
		case FilterBoolean:
			kept, skippedReason = filterBoolean(current.Rows, f)
		default:
			kept, skippedReason = current.Rows, fmt.Sprintf("unknown filter kind %d", f.Kind)
		}

		if skippedReason != "" {
			report.After = len(current.Rows)
			report.Skipped = true
			report.Reason = skippedReason
			reports = append(reports, report)
			continue
		}

		current.Rows = kept
		report.After = len(current.Rows)
		reports = append(reports, report)
	}

	return current, reports
}

func filterCategorical(rows []Row, f Filter) ([]Row, string) {
	if len(f.Values) == 0 {
		return rows, "empty value set"
	}
	for _, v := range f.Values {
		if v == AllSentinel {
			return rows, "sentinel value selected"
		}
	}

	// String-form membership handles mixed-type columns.
	allowed := make(map[string]bool, len(f.Values))
	for _, v := range f.Values {
		allowed[v] = true
	}

	var kept []Row
	for _, row := range rows {
		match := false
		for _, el := range Elements(row[f.Column]) {
			if allowed[AsString(el)] {
				match = true
				break
			}
		}
		if match {
			kept = append(kept, row)
		}
	}
	return kept, ""
}

func filterDateRange(rows []Row, f Filter) ([]Row, string) {
	if len(rows) > 0 && !columnHasDates(rows, f.Column) {
		return rows, "column cannot be interpreted as dates"
	}

	var kept []Row
	for _, row := range rows {
		ts, ok := AsTime(row[f.Column])
		if !ok {
			continue
		}
		if !ts.Before(f.Start) && !ts.After(f.End) {
			kept = append(kept, row)
		}
	}
	return kept, ""
}

func filterNumericRange(rows []Row, f Filter) ([]Row, string) {
	if len(rows) > 0 && !columnHasNumbers(rows, f.Column) {
		return rows, "column cannot be interpreted as numbers"
	}

	var kept []Row
	for _, row := range rows {
		v, ok := AsFloat(row[f.Column])
		if !ok {
			continue
		}
		if v >= f.Min && v <= f.Max {
			kept = append(kept, row)
		}
	}
	return kept, ""
}

func filterSubstring(rows []Row, f Filter) ([]Row, string) {
	if strings.EqualFold(f.Substring, AllSentinel) {
		return rows, "sentinel value selected"
	}

	needle := strings.ToLower(f.Substring)
	var kept []Row
	for _, row := range rows {
		if strings.Contains(strings.ToLower(AsString(row[f.Column])), needle) {
			kept = append(kept, row)
		}
	}
	return kept, ""
}

func filterBoolean(rows []Row, f Filter) ([]Row, string) {
	want := strconv.FormatBool(f.Bool)
	var kept []Row
	for _, row := range rows {
		if b, ok := AsBool(row[f.Column]); ok {
			if b == f.Bool {
				kept = append(kept, row)
			}
			continue
		}
		// Mixed-type fallback: compare string forms.
		if strings.EqualFold(AsString(row[f.Column]), want) {
			kept = append(kept, row)
		}
	}
	return kept, ""
}

// columnHasDates reports whether at least one cell coerces to a date.
func columnHasDates(rows []Row, col string) bool {
	for _, row := range rows {
		if _, ok := AsTime(row[col]); ok {
			return true
		}
	}
	return false
}

// columnHasNumbers reports whether at least one cell coerces to a number.
func columnHasNumbers(rows []Row, col string) bool {
	for _, row := range rows {
		if _, ok := AsFloat(row[col]); ok {
			return true
		}
	}
	return false
}
