// Package export writes pipeline output back to the remote write API in
// provider-sized batches, paced under the provider's write rate limit.
package export

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/wellside/insight/internal/airtable/client"
	"github.com/wellside/insight/internal/score"
)

// defaultWriteRPS is the provider's documented write rate limit.
const defaultWriteRPS = 5

// Result counts how an export run went. Failed batches do not abort the run;
// they are counted and the run continues.
type Result struct {
	Written int
	Failed  int
	Errors  []error
}

// Exporter batches records for the write API.
type Exporter struct {
	client  client.Client
	logger  client.Logger
	limiter *rate.Limiter
}

// New creates an exporter. writeRPS <= 0 selects the provider default.
func New(c client.Client, logger client.Logger, writeRPS float64) *Exporter {
	if logger == nil {
		logger = client.NewNoopLogger()
	}
	if writeRPS <= 0 {
		writeRPS = defaultWriteRPS
	}
	return &Exporter{
		client:  c,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(writeRPS), 1),
	}
}

// ExportRecords writes field payloads in batches of at most
// client.MaxBatchSize, waiting on the rate limiter before each request.
func (e *Exporter) ExportRecords(ctx context.Context, baseID, tableID string, records []client.Fields) (Result, error) {
	var res Result

	for start := 0; start < len(records); start += client.MaxBatchSize {
		end := start + client.MaxBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		if err := e.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("waiting for rate limiter: %w", err)
		}

		if _, err := e.client.Create(ctx, baseID, tableID, batch); err != nil {
			res.Failed += len(batch)
			res.Errors = append(res.Errors, err)
			e.logger.Warn(ctx, "Export batch failed", map[string]interface{}{
				"table":   tableID,
				"records": len(batch),
				"error":   err,
			})
			continue
		}
		res.Written += len(batch)
	}

	e.logger.Info(ctx, "Export completed", map[string]interface{}{
		"table":   tableID,
		"written": res.Written,
		"failed":  res.Failed,
	})

	return res, nil
}

// ExportScores converts scoring output to write payloads and exports them.
func (e *Exporter) ExportScores(ctx context.Context, baseID, tableID string, records []score.Record) (Result, error) {
	payloads := make([]client.Fields, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, client.Fields{
			"Leader":            rec.Entity,
			"Event Count":       rec.EventCount,
			"Performance Score": rec.PerformanceScore,
			"Rank":              rec.Rank,
			"Minimums Met":      rec.MinimumsMet,
		})
	}
	return e.ExportRecords(ctx, baseID, tableID, payloads)
}
