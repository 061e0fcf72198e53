package table

import (
	"fmt"
	"strings"
)

// FieldSpec describes how to find a logically required column when the
// authoritative upstream name is unknown or variable. Candidates are tried
// in priority order.
type FieldSpec struct {
	Canonical  string
	Candidates []string
}

// Reconcile projects candidate columns into canonical names. For each spec:
//
//  1. If the canonical column already exists, nothing happens.
//  2. Candidates are tried in order for a case-sensitive exact column match;
//     the first hit is copied into the canonical column.
//  3. Failing that, candidates are tried in order against every column name
//     with a case-insensitive substring test, columns in table order.
//  4. Still unresolved: the canonical column stays absent and a diagnostic
//     is recorded. Never an error.
//
// Unknown columns are left untouched. The precedence (exact over substring,
// candidate priority within each) is deterministic.
func Reconcile(t *Table, specs []FieldSpec, diag *Diagnostics) {
	for _, spec := range specs {
		if t.HasColumn(spec.Canonical) {
			continue
		}

		source := ""
		for _, cand := range spec.Candidates {
			if t.HasColumn(cand) {
				source = cand
				break
			}
		}

		if source == "" {
			for _, cand := range spec.Candidates {
				lc := strings.ToLower(cand)
				for _, col := range t.Columns {
					if strings.Contains(strings.ToLower(col), lc) {
						source = col
						break
					}
				}
				if source != "" {
					break
				}
			}
		}

		if source == "" {
			if diag != nil {
				diag.AddUnmappedField(spec.Canonical,
					fmt.Sprintf("no column matched candidates %v", spec.Candidates))
			}
			continue
		}

		t.AddColumn(spec.Canonical)
		for _, row := range t.Rows {
			row[spec.Canonical] = row[source]
		}
	}
}
