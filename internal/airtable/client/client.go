// Package client provides HTTP client functionality for the Airtable API
package client

import (
	"context"
	"fmt"
	"time"
)

// Client defines the interface for interacting with the Airtable API
type Client interface {
	// List fetches a single page of records from a table
	List(ctx context.Context, baseID, tableID string, query ListQuery) (Page, error)
	// Create writes a batch of records to a table (max MaxBatchSize per call)
	Create(ctx context.Context, baseID, tableID string, batch []Fields) ([]Record, error)
}

// Config holds client configuration
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	Logger     Logger
}

// defaultLogger is the default no-op logger instance
var defaultLogger = &noopLogger{}

// DefaultConfig returns a default client configuration
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:    "https://api.airtable.com",
		APIKey:     apiKey,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		Logger:     defaultLogger,
	}
}

// client implements the Client interface
type client struct {
	httpClient *httpClient
	logger     Logger
}

// New creates a new Airtable API client
func New(config Config) (Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if config.Logger == nil {
		config.Logger = defaultLogger
	}

	return &client{
		httpClient: newHTTPClient(config),
		logger:     config.Logger,
	}, nil
}

// List implements Client.List
func (c *client) List(ctx context.Context, baseID, tableID string, query ListQuery) (Page, error) {
	return c.httpClient.doListRequest(ctx, baseID, tableID, query)
}

// Create implements Client.Create
func (c *client) Create(ctx context.Context, baseID, tableID string, batch []Fields) ([]Record, error) {
	return c.httpClient.doCreateRequest(ctx, baseID, tableID, batch)
}
