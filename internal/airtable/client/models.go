// Package client provides HTTP client functionality for the Airtable API
package client

import (
	"time"
)

// Record is a single record as returned by the list endpoint. Fields holds
// the raw column values keyed by field name; values may be scalars or lists.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// Fields is the payload for creating or updating a single record.
type Fields map[string]any

// ListQuery represents parameters for a table list request
type ListQuery struct {
	MaxRecords      int    `json:"max_records,omitempty"`
	View            string `json:"view,omitempty"`
	FilterByFormula string `json:"filter_by_formula,omitempty"`
	Offset          string `json:"offset,omitempty"`
}

// ListResponse represents the response from a table list endpoint
type ListResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// CreateRequest is the body for a batch create request. The API accepts at
// most MaxBatchSize records per call.
type CreateRequest struct {
	Records []CreateRecord `json:"records"`
}

// CreateRecord wraps a fields payload for the write endpoint.
type CreateRecord struct {
	Fields Fields `json:"fields"`
}

// CreateResponse represents the response from a batch create request
type CreateResponse struct {
	Records []Record `json:"records"`
}

// Page represents a page of records with pagination info. An empty Offset
// means the server has no further pages.
type Page struct {
	Records []Record
	Offset  string
}

// MaxBatchSize is the provider limit on records per write request.
const MaxBatchSize = 10
