package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellside/insight/internal/table"
)

func kpiOptions() Options {
	return Options{
		EntityColumn: "Leader",
		Weights: map[string]float64{
			"Crossbooking": 1,
			"Photos":       1,
			"FormsFilled":  1,
		},
		Minimums: map[string]float64{
			"Crossbooking": 2,
			"Photos":       3,
		},
	}
}

func kpiRow(leader string, crossbooking, photos, forms float64) table.Row {
	return table.Row{
		"Leader":       leader,
		"Crossbooking": crossbooking,
		"Photos":       photos,
		"FormsFilled":  forms,
	}
}

func kpiTable(rows ...table.Row) table.Table {
	return table.Table{
		Columns: []string{"Leader", "Crossbooking", "Photos", "FormsFilled"},
		Rows:    rows,
	}
}

func TestScore_EmptyTable(t *testing.T) {
	records := Score(table.Table{}, kpiOptions())
	assert.Empty(t, records)
}

func TestScore_SingleEntityFullCompliance(t *testing.T) {
	// One leader at the population max for every metric: MinMet is 1 and the
	// magnitude term is 1, so every sub-score and the composite are 1.
	tbl := kpiTable(kpiRow("Alice", 4, 6, 1))

	records := Score(tbl, kpiOptions())
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Alice", rec.Entity)
	assert.Equal(t, 1, rec.EventCount)
	assert.InDelta(t, 1.0, rec.MinMet["Crossbooking"], 1e-9)
	assert.InDelta(t, 1.0, rec.Normalized["Crossbooking"], 1e-9)
	assert.InDelta(t, 100.0, rec.PerformanceScore, 1e-9)
	assert.Equal(t, 1, rec.Rank)
	assert.InDelta(t, 1.0, rec.MinimumsMet, 1e-9)
}

func TestScore_PartialCredit(t *testing.T) {
	// One crossbooking against a minimum of two is half credit; the blended
	// sub-score mixes that with magnitude relative to the population max.
	tbl := kpiTable(
		kpiRow("Alice", 1, 3, 1),
		kpiRow("Bob", 4, 3, 1),
	)

	records := Score(tbl, kpiOptions())
	require.Len(t, records, 2)

	var alice Record
	for _, rec := range records {
		if rec.Entity == "Alice" {
			alice = rec
		}
	}

	assert.InDelta(t, 0.5, alice.MinMet["Crossbooking"], 1e-9)
	// 0.7*0.5 + 0.3*(1/4)
	assert.InDelta(t, 0.425, alice.Normalized["Crossbooking"], 1e-9)
	// Alice missed the crossbooking minimum on her only row.
	assert.InDelta(t, 0.0, alice.MinimumsMet, 1e-9)
}

func TestScore_BinaryMetricIsPlainMean(t *testing.T) {
	tbl := kpiTable(
		kpiRow("Alice", 2, 3, 1),
		kpiRow("Alice", 2, 3, 0),
	)

	records := Score(tbl, kpiOptions())
	require.Len(t, records, 1)
	assert.InDelta(t, 0.5, records[0].Normalized["FormsFilled"], 1e-9)
}

func TestScore_Monotonicity(t *testing.T) {
	base := kpiTable(
		kpiRow("Alice", 1, 2, 1),
		kpiRow("Bob", 2, 3, 1),
	)
	improved := kpiTable(
		kpiRow("Alice", 2, 2, 1),
		kpiRow("Bob", 2, 3, 1),
	)

	before := Score(base, kpiOptions())
	after := Score(improved, kpiOptions())

	scoreOf := func(records []Record, entity string) float64 {
		for _, rec := range records {
			if rec.Entity == entity {
				return rec.PerformanceScore
			}
		}
		t.Fatalf("entity %q not found", entity)
		return 0
	}

	assert.GreaterOrEqual(t, scoreOf(after, "Alice"), scoreOf(before, "Alice"))
}

func TestScore_DenseMinRanking(t *testing.T) {
	// Identical rows score identically; [90ish, 90ish, lower] must rank
	// [1, 1, 3].
	tbl := kpiTable(
		kpiRow("Alice", 4, 6, 1),
		kpiRow("Bob", 4, 6, 1),
		kpiRow("Carol", 1, 1, 0),
	)

	records := Score(tbl, kpiOptions())
	require.Len(t, records, 3)

	byEntity := map[string]Record{}
	for _, rec := range records {
		byEntity[rec.Entity] = rec
	}

	assert.Equal(t, byEntity["Alice"].PerformanceScore, byEntity["Bob"].PerformanceScore)
	assert.Equal(t, 1, byEntity["Alice"].Rank)
	assert.Equal(t, 1, byEntity["Bob"].Rank)
	assert.Equal(t, 3, byEntity["Carol"].Rank)
}

func TestScore_WeightNormalization(t *testing.T) {
	// Scaling every weight by the same factor must not change the scores.
	tbl := kpiTable(
		kpiRow("Alice", 1, 4, 1),
		kpiRow("Bob", 3, 2, 0),
	)

	opts := kpiOptions()
	scaled := kpiOptions()
	for m := range scaled.Weights {
		scaled.Weights[m] *= 5
	}

	a := Score(tbl, opts)
	b := Score(tbl, scaled)
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Entity, b[i].Entity)
		assert.InDelta(t, a[i].PerformanceScore, b[i].PerformanceScore, 1e-9)
	}
}

func TestScore_NonNumericCellsCountAsZero(t *testing.T) {
	tbl := kpiTable(
		table.Row{"Leader": "Alice", "Crossbooking": "garbage", "Photos": nil, "FormsFilled": 1.0},
	)

	records := Score(tbl, kpiOptions())
	require.Len(t, records, 1)
	assert.InDelta(t, 0.0, records[0].Mean["Crossbooking"], 1e-9)
	assert.InDelta(t, 0.0, records[0].MinMet["Photos"], 1e-9)
}

func TestScore_CustomBlend(t *testing.T) {
	tbl := kpiTable(
		kpiRow("Alice", 1, 3, 1),
		kpiRow("Bob", 2, 3, 1),
	)

	opts := kpiOptions()
	opts.BlendCompliance = 1.0
	opts.BlendMagnitude = 0.0

	records := Score(tbl, opts)
	byEntity := map[string]Record{}
	for _, rec := range records {
		byEntity[rec.Entity] = rec
	}

	// Pure compliance: Alice's crossbooking sub-score is exactly MinMet.
	assert.InDelta(t, 0.5, byEntity["Alice"].Normalized["Crossbooking"], 1e-9)
}

func TestScore_MinimumsMetAllOrNothing(t *testing.T) {
	tbl := kpiTable(
		kpiRow("Alice", 2, 3, 1), // everything met
		kpiRow("Alice", 2, 1, 1), // photos below minimum
		kpiRow("Alice", 2, 3, 0), // flag unset
		kpiRow("Alice", 2, 3, 1), // everything met
	)

	records := Score(tbl, kpiOptions())
	require.Len(t, records, 1)
	assert.InDelta(t, 0.5, records[0].MinimumsMet, 1e-9)
}
