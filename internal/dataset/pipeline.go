package dataset

import (
	"context"
	"fmt"

	"github.com/wellside/insight/internal/airtable/client"
	"github.com/wellside/insight/internal/table"
)

// Stats summarizes one pipeline run for the caller's UI: how many records
// arrived, how many were skipped as malformed, and which canonical fields
// stayed unmapped.
type Stats struct {
	Fetched int
	Skipped int
	Diag    *table.Diagnostics
}

// Pipeline runs the fetch → flatten → reconcile → coerce → derive sequence
// for a dataset. Stateless; safe for concurrent use as long as each call
// works on its own result.
type Pipeline struct {
	client client.Client
	logger client.Logger
}

// New creates a pipeline over the given API client.
func New(c client.Client, logger client.Logger) *Pipeline {
	if logger == nil {
		logger = client.NewNoopLogger()
	}
	return &Pipeline{client: c, logger: logger}
}

// Run fetches every page of the dataset's table and shapes it for analysis.
// Transport failures abort the run; schema drift and malformed records
// degrade into Stats and diagnostics instead.
func (p *Pipeline) Run(ctx context.Context, ds Dataset, baseID, tableID string, query client.ListQuery) (table.Table, Stats, error) {
	pager := client.NewPager(p.client, baseID, tableID, query, p.logger)

	records, err := pager.AllRecords(ctx)
	if err != nil {
		return table.Table{}, Stats{}, fmt.Errorf("fetching %s records: %w", ds.Name, err)
	}

	t, skipped := table.Flatten(records)

	diag := table.NewDiagnostics()
	diag.SetSourceInfo("dataset", ds.Name)
	diag.SetSourceInfo("record_count", len(records))

	table.Reconcile(&t, ds.Fields, diag)

	table.CoerceDates(&t, ds.DateColumns...)
	table.CoerceNumbers(&t, ds.NumericColumns...)
	table.CoerceFlags(&t, ds.FlagColumns...)

	for _, rate := range ds.Rates {
		if !table.DeriveRateFirst(&t, rate.Output, rate.Pairs) {
			diag.AddWarning(fmt.Sprintf("derived metric %q skipped: no column pair present", rate.Output))
		}
	}

	stats := Stats{Fetched: len(records), Skipped: skipped, Diag: diag}

	p.logger.Info(ctx, "Dataset pipeline completed", map[string]interface{}{
		"dataset":  ds.Name,
		"fetched":  stats.Fetched,
		"skipped":  stats.Skipped,
		"unmapped": len(diag.UnmappedFields),
		"rows":     t.Len(),
	})

	return t, stats, nil
}
