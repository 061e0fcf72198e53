// Package client provides HTTP client functionality for the Airtable API
package client

import (
	"context"
	"fmt"
)

// Pager provides offset-based pagination over a table. The server returns an
// opaque offset token with each page; its absence marks the final page.
type Pager struct {
	client     Client
	baseID     string
	tableID    string
	query      ListQuery
	logger     Logger
	hasStarted bool
}

// NewPager creates a new pager for the given table and query
func NewPager(client Client, baseID, tableID string, query ListQuery, logger Logger) *Pager {
	return &Pager{
		client:  client,
		baseID:  baseID,
		tableID: tableID,
		query:   query,
		logger:  logger,
	}
}

// NextPage fetches the next page of records
func (p *Pager) NextPage(ctx context.Context) (Page, error) {
	// If we've already started and there's no offset, we've exhausted all pages
	if p.hasStarted && p.query.Offset == "" {
		return Page{}, fmt.Errorf("no more pages available")
	}

	page, err := p.client.List(ctx, p.baseID, p.tableID, p.query)
	if err != nil {
		p.logger.Error(ctx, "Failed to fetch records page", map[string]interface{}{
			"error": err,
			"table": p.tableID,
		})
		return Page{}, fmt.Errorf("fetching records page: %w", err)
	}

	// Mark that we've started paging and update offset for next page
	p.hasStarted = true
	p.query.Offset = page.Offset

	p.logger.Debug(ctx, "Fetched records page", map[string]interface{}{
		"records":  len(page.Records),
		"has_more": page.Offset != "",
	})

	return page, nil
}

// HasMore returns true if there are more pages to fetch
func (p *Pager) HasMore() bool {
	return p.query.Offset != ""
}

// AllRecords fetches all pages and returns them as a single slice, in page
// order. A failure on any page discards everything fetched so far.
func (p *Pager) AllRecords(ctx context.Context) ([]Record, error) {
	var allRecords []Record

	for p.HasMore() || !p.hasStarted {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		allRecords = append(allRecords, page.Records...)
	}

	p.logger.Info(ctx, "Fetched all record pages", map[string]interface{}{
		"total_records": len(allRecords),
		"table":         p.tableID,
	})
	return allRecords, nil
}
