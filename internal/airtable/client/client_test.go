// Package client provides HTTP client functionality for the Airtable API
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				BaseURL:    "https://api.airtable.com",
				APIKey:     "test-key",
				Timeout:    time.Second * 30,
				MaxRetries: 3,
				Logger:     NewNoopLogger(),
			},
			wantErr: false,
		},
		{
			name: "missing api key",
			config: Config{
				BaseURL: "https://api.airtable.com",
				Logger:  NewNoopLogger(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, c)
			}
		})
	}
}

func TestClient_List(t *testing.T) {
	mockResponse := ListResponse{
		Records: []Record{
			{
				ID:          "rec001",
				CreatedTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				Fields: map[string]any{
					"Client":    "Acme Corp",
					"Headcount": 100.0,
				},
			},
		},
		Offset: "itr98765/rec001",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v0/appBase123/tblTable456", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "1000", r.URL.Query().Get("maxRecords"))
		assert.Equal(t, "{Year}='2024'", r.URL.Query().Get("filterByFormula"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mockResponse)
	}))
	defer server.Close()

	c, err := New(Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    time.Second * 5,
		MaxRetries: 0,
		Logger:     NewNoopLogger(),
	})
	require.NoError(t, err)

	page, err := c.List(context.Background(), "appBase123", "tblTable456", ListQuery{
		MaxRecords:      1000,
		FilterByFormula: "{Year}='2024'",
	})
	require.NoError(t, err)

	assert.Len(t, page.Records, 1)
	assert.Equal(t, "rec001", page.Records[0].ID)
	assert.Equal(t, "Acme Corp", page.Records[0].Fields["Client"])
	assert.Equal(t, "itr98765/rec001", page.Offset)
}

func TestClient_List_RetriesOnServerError(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("500 internal error"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ListResponse{Records: []Record{{ID: "rec001", Fields: map[string]any{}}}})
	}))
	defer server.Close()

	c, err := New(Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    time.Second * 5,
		MaxRetries: 3,
		Logger:     NewNoopLogger(),
	})
	require.NoError(t, err)

	page, err := c.List(context.Background(), "appBase", "tblTable", ListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Records, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_List_HardFailureAfterRetries(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("503 unavailable"))
	}))
	defer server.Close()

	c, err := New(Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    time.Second * 5,
		MaxRetries: 1,
		Logger:     NewNoopLogger(),
	})
	require.NoError(t, err)

	_, err = c.List(context.Background(), "appBase", "tblTable", ListQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	// Initial attempt plus one retry.
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_List_RetriesOnThrottleWithoutResetHeader(t *testing.T) {
	var calls int32

	// Throttling responses do not always carry Retry-After or
	// X-RateLimit-Reset; a bare 429 still gets the backoff treatment.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"RATE_LIMIT_REACHED"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ListResponse{Records: []Record{{ID: "rec001", Fields: map[string]any{}}}})
	}))
	defer server.Close()

	c, err := New(Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    time.Second * 5,
		MaxRetries: 3,
		Logger:     NewNoopLogger(),
	})
	require.NoError(t, err)

	page, err := c.List(context.Background(), "appBase", "tblTable", ListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Records, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_List_ErrorReportsActualAttemptCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"NOT_FOUND"}`))
	}))
	defer server.Close()

	c, err := New(Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    time.Second * 5,
		MaxRetries: 3,
		Logger:     NewNoopLogger(),
	})
	require.NoError(t, err)

	// A 404 is not retryable, so only one attempt was made.
	_, err = c.List(context.Background(), "appBase", "tblGone", ListQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 attempts")
	assert.Contains(t, err.Error(), "404")
}

func TestClient_List_NoRetryOnClientError(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"NOT_AUTHORIZED"}`))
	}))
	defer server.Close()

	c, err := New(Config{
		BaseURL:    server.URL,
		APIKey:     "bad-key",
		Timeout:    time.Second * 5,
		MaxRetries: 3,
		Logger:     NewNoopLogger(),
	})
	require.NoError(t, err)

	_, err = c.List(context.Background(), "appBase", "tblTable", ListQuery{})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Records, 2)
		assert.Equal(t, "Alice", req.Records[0].Fields["Leader"])

		resp := CreateResponse{Records: []Record{
			{ID: "rec100", Fields: map[string]any(req.Records[0].Fields)},
			{ID: "rec101", Fields: map[string]any(req.Records[1].Fields)},
		}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c, err := New(Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    time.Second * 5,
		MaxRetries: 0,
		Logger:     NewNoopLogger(),
	})
	require.NoError(t, err)

	created, err := c.Create(context.Background(), "appBase", "tblScores", []Fields{
		{"Leader": "Alice", "Performance Score": 92.5},
		{"Leader": "Bob", "Performance Score": 81.0},
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, "rec100", created[0].ID)
}

func TestClient_Create_RejectsOversizedBatch(t *testing.T) {
	c, err := New(Config{
		BaseURL: "https://api.airtable.com",
		APIKey:  "test-key",
		Logger:  NewNoopLogger(),
	})
	require.NoError(t, err)

	batch := make([]Fields, MaxBatchSize+1)
	for i := range batch {
		batch[i] = Fields{"Leader": "x"}
	}

	_, err = c.Create(context.Background(), "appBase", "tblScores", batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds provider limit")
}
