package table

// CoerceDates converts the named columns to time.Time cells in place.
// Unparsable values become nil; columns absent from the table are skipped.
func CoerceDates(t *Table, columns ...string) {
	for _, col := range columns {
		if !t.HasColumn(col) {
			continue
		}
		for _, row := range t.Rows {
			if ts, ok := AsTime(row[col]); ok {
				row[col] = ts
			} else {
				row[col] = nil
			}
		}
	}
}

// CoerceNumbers converts the named columns to float64 cells in place,
// stripping currency symbols and thousands separators first. Unparsable
// values become nil; columns absent from the table are skipped.
func CoerceNumbers(t *Table, columns ...string) {
	for _, col := range columns {
		if !t.HasColumn(col) {
			continue
		}
		for _, row := range t.Rows {
			if f, ok := AsFloat(row[col]); ok {
				row[col] = f
			} else {
				row[col] = nil
			}
		}
	}
}

// DeriveRate computes output = numerator / denominator per row. Rows with a
// nil, zero, or non-numeric denominator get an explicit 0 rather than nil,
// so downstream averages over a mixed population stay well defined. Returns
// false when either input column is absent (the metric is skipped).
func DeriveRate(t *Table, numerator, denominator, output string) bool {
	if !t.HasColumn(numerator) || !t.HasColumn(denominator) {
		return false
	}

	t.AddColumn(output)
	for _, row := range t.Rows {
		num, numOK := AsFloat(row[numerator])
		den, denOK := AsFloat(row[denominator])
		if !numOK || !denOK || den == 0 {
			row[output] = 0.0
			continue
		}
		row[output] = num / den
	}
	return true
}

// CoerceFlags converts yes/no style columns to 1/0 float cells in place so
// they can feed scoring as binary completion flags. Anything that is not
// recognizably affirmative counts as 0.
func CoerceFlags(t *Table, columns ...string) {
	for _, col := range columns {
		if !t.HasColumn(col) {
			continue
		}
		for _, row := range t.Rows {
			if b, ok := AsBool(row[col]); ok && b {
				row[col] = 1.0
			} else {
				row[col] = 0.0
			}
		}
	}
}

// RatePair names a numerator/denominator column pair.
type RatePair struct {
	Numerator   string
	Denominator string
}

// DeriveRateFirst tries the synonym pairs in priority order and computes the
// rate from the first pair where both columns exist. The metric is computed
// once; later pairs are not consulted. Returns false when no pair matched.
func DeriveRateFirst(t *Table, output string, pairs []RatePair) bool {
	for _, p := range pairs {
		if DeriveRate(t, p.Numerator, p.Denominator, output) {
			return true
		}
	}
	return false
}
