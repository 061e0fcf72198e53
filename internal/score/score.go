// Package score implements the weighted, normalized multi-factor performance
// scoring used for leader rankings: per-metric minimum-threshold partial
// credit, compliance/magnitude blending, weighted composites, and dense
// "min" ranking.
package score

import (
	"sort"

	"github.com/wellside/insight/internal/table"
)

// Default blend between threshold compliance and raw magnitude for
// continuous metrics. Business constants carried as configurable defaults.
const (
	DefaultBlendCompliance = 0.7
	DefaultBlendMagnitude  = 0.3
)

// Options configures a scoring run.
type Options struct {
	// EntityColumn is the column rows are grouped by (e.g. a leader name).
	EntityColumn string

	// Weights maps metric column names to their relative weight. Weights are
	// normalized to sum to 1 before compositing.
	Weights map[string]float64

	// Minimums maps continuous metric names to their minimum threshold.
	// Metrics present in Weights but absent here are treated as binary 0/1
	// flags whose sub-score is the plain mean.
	Minimums map[string]float64

	// BlendCompliance and BlendMagnitude weight the two halves of a
	// continuous metric's sub-score. Zero values fall back to the defaults.
	BlendCompliance float64
	BlendMagnitude  float64
}

// Record is the per-entity scoring output. Created fresh on every run; never
// persisted.
type Record struct {
	Entity     string
	EventCount int

	// Mean holds the raw per-metric means across the entity's rows.
	Mean map[string]float64

	// MinMet holds, per continuous metric, the average threshold-met
	// fraction min(raw/minimum, 1) across the entity's rows.
	MinMet map[string]float64

	// Normalized holds the 0-1 sub-score per metric: the compliance and
	// magnitude blend for continuous metrics, the flag mean for binary ones.
	Normalized map[string]float64

	// WeightedScore is the weight-normalized composite in [0, 1].
	WeightedScore float64

	// PerformanceScore is WeightedScore scaled to [0, 100] for display.
	PerformanceScore float64

	// Rank is 1 for the best score; ties share the minimum rank and the
	// next distinct score resumes at tied_rank + tie_count.
	Rank int

	// MinimumsMet is the fraction of the entity's rows where every minimum
	// threshold and every binary flag was satisfied simultaneously.
	MinimumsMet float64
}

// Score groups the table's rows by entity and computes a Record per entity.
// An empty table yields an empty result. Cells that do not parse as numbers
// count as 0 rather than aborting the run; source data quality is not
// guaranteed.
func Score(t table.Table, opts Options) []Record {
	if t.Len() == 0 || len(opts.Weights) == 0 {
		return nil
	}

	blendCompliance := opts.BlendCompliance
	blendMagnitude := opts.BlendMagnitude
	if blendCompliance == 0 && blendMagnitude == 0 {
		blendCompliance = DefaultBlendCompliance
		blendMagnitude = DefaultBlendMagnitude
	}

	metrics := make([]string, 0, len(opts.Weights))
	for m := range opts.Weights {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)

	// Population maxima over the whole table, guarded against zero.
	popMax := make(map[string]float64, len(opts.Minimums))
	for metric := range opts.Minimums {
		maxVal := 0.0
		for _, row := range t.Rows {
			if v, ok := table.AsFloat(row[metric]); ok && v > maxVal {
				maxVal = v
			}
		}
		if maxVal <= 0 {
			maxVal = 1
		}
		popMax[metric] = maxVal
	}

	// Group row indices by entity, preserving first-seen order.
	groups := make(map[string][]table.Row)
	order := make([]string, 0)
	for _, row := range t.Rows {
		entity := table.AsString(row[opts.EntityColumn])
		if _, seen := groups[entity]; !seen {
			order = append(order, entity)
		}
		groups[entity] = append(groups[entity], row)
	}

	totalWeight := 0.0
	for _, w := range opts.Weights {
		totalWeight += w
	}

	records := make([]Record, 0, len(order))
	for _, entity := range order {
		rows := groups[entity]
		if len(rows) == 0 {
			continue
		}

		rec := Record{
			Entity:     entity,
			EventCount: len(rows),
			Mean:       make(map[string]float64, len(metrics)),
			MinMet:     make(map[string]float64, len(opts.Minimums)),
			Normalized: make(map[string]float64, len(metrics)),
		}

		allMet := 0
		for _, row := range rows {
			if rowMeetsAllMinimums(row, metrics, opts.Minimums) {
				allMet++
			}
		}
		rec.MinimumsMet = float64(allMet) / float64(len(rows))

		for _, metric := range metrics {
			sum := 0.0
			minMetSum := 0.0
			for _, row := range rows {
				v := metricValue(row, metric)
				sum += v
				if minimum, ok := opts.Minimums[metric]; ok {
					minMetSum += thresholdFraction(v, minimum)
				}
			}
			mean := sum / float64(len(rows))
			rec.Mean[metric] = mean

			if _, ok := opts.Minimums[metric]; ok {
				minMet := minMetSum / float64(len(rows))
				rec.MinMet[metric] = minMet
				rec.Normalized[metric] = blendCompliance*minMet + blendMagnitude*(mean/popMax[metric])
			} else {
				// Binary completion flag: the sub-score is the flag mean.
				rec.Normalized[metric] = mean
			}
		}

		if totalWeight > 0 {
			for _, metric := range metrics {
				rec.WeightedScore += rec.Normalized[metric] * (opts.Weights[metric] / totalWeight)
			}
		}
		rec.PerformanceScore = rec.WeightedScore * 100

		records = append(records, rec)
	}

	rank(records)
	return records
}

// metricValue reads a metric cell as a number, treating unparsable or
// missing cells as 0.
func metricValue(row table.Row, metric string) float64 {
	v, ok := table.AsFloat(row[metric])
	if !ok {
		return 0
	}
	return v
}

// thresholdFraction computes min(value/minimum, 1). A zero minimum is always
// fully met.
func thresholdFraction(value, minimum float64) float64 {
	if minimum <= 0 {
		return 1
	}
	frac := value / minimum
	if frac > 1 {
		return 1
	}
	if frac < 0 {
		return 0
	}
	return frac
}

// rowMeetsAllMinimums is the all-or-nothing check behind MinimumsMet: every
// continuous metric at or above its minimum and every binary flag set.
func rowMeetsAllMinimums(row table.Row, metrics []string, minimums map[string]float64) bool {
	for _, metric := range metrics {
		v := metricValue(row, metric)
		if minimum, ok := minimums[metric]; ok {
			if v < minimum {
				return false
			}
		} else if v < 1 {
			return false
		}
	}
	return true
}

// rank sorts records by PerformanceScore descending (entity name breaking
// ties for stable output) and assigns dense "min" ranks: tied scores share
// the lowest rank of the tie, and the next distinct score resumes at
// tied_rank + tie_count.
func rank(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].PerformanceScore != records[j].PerformanceScore {
			return records[i].PerformanceScore > records[j].PerformanceScore
		}
		return records[i].Entity < records[j].Entity
	})

	for i := range records {
		if i > 0 && records[i].PerformanceScore == records[i-1].PerformanceScore {
			records[i].Rank = records[i-1].Rank
		} else {
			records[i].Rank = i + 1
		}
	}
}
