package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	exponentialBase  = 2.0
	jitterFraction   = 0.5
	jitterOffset     = 0.25
	maxBackoffDelay  = 30 * time.Second
	baseBackoffDelay = 1 * time.Second
)

// httpClient handles low-level HTTP operations with retry and backoff.
type httpClient struct {
	baseURL    string
	apiKey     string
	maxRetries int
	logger     Logger
	httpClient *http.Client
}

// newHTTPClient creates a new HTTP client.
func newHTTPClient(config Config) *httpClient {
	return &httpClient{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		maxRetries: config.MaxRetries,
		logger:     config.Logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// doListRequest performs a list request with retry logic.
func (c *httpClient) doListRequest(ctx context.Context, baseID, tableID string, query ListQuery) (Page, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		attempts++
		if attempt > 0 {
			c.logger.Info(ctx, "Retrying list request", map[string]interface{}{
				"operation":   "list_request",
				"table":       tableID,
				"attempt":     attempt,
				"max_retries": c.maxRetries,
			})
		}

		page, err := c.doListRequestOnce(ctx, baseID, tableID, query)
		if err == nil {
			if attempt > 0 {
				c.logger.Info(ctx, "List request succeeded after retry", map[string]interface{}{
					"operation": "list_request",
					"table":     tableID,
					"attempt":   attempt,
				})
			}
			return page, nil
		}

		lastErr = err

		if !c.shouldRetry(err, attempt) {
			break
		}

		if waitErr := c.waitBeforeRetry(ctx, attempt); waitErr != nil {
			return Page{}, waitErr
		}
	}

	return Page{}, fmt.Errorf("list request failed after %d attempts: %w", attempts, lastErr)
}

// doListRequestOnce performs a single list request.
func (c *httpClient) doListRequestOnce(ctx context.Context, baseID, tableID string, query ListQuery) (Page, error) {
	u, err := url.Parse(fmt.Sprintf("%s/v0/%s/%s", c.baseURL, baseID, tableID))
	if err != nil {
		return Page{}, fmt.Errorf("parsing URL: %w", err)
	}

	q := url.Values{}
	if query.MaxRecords > 0 {
		q.Set("maxRecords", strconv.Itoa(query.MaxRecords))
	}
	if query.View != "" {
		q.Set("view", query.View)
	}
	if query.FilterByFormula != "" {
		q.Set("filterByFormula", query.FilterByFormula)
	}
	if query.Offset != "" {
		q.Set("offset", query.Offset)
	}

	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "wellside-insight/1.0")

	c.logger.Debug(ctx, "Making list request", map[string]interface{}{
		"operation": "list_request",
		"table":     tableID,
		"url":       c.redactURL(u.String()),
		"method":    "GET",
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("executing request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		resetTime := c.parseRateLimitReset(ctx, resp)
		if resetTime > 0 {
			c.logger.Warn(ctx, "Rate limited, waiting for reset", map[string]interface{}{
				"operation": "list_request",
				"table":     tableID,
				"reset_in":  time.Duration(resetTime) * time.Second,
			})
			return Page{}, &rateLimitError{resetIn: time.Duration(resetTime) * time.Second}
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error(ctx, "List request failed", map[string]interface{}{
			"operation":   "list_request",
			"table":       tableID,
			"status_code": resp.StatusCode,
			"response":    string(body),
		})
		return Page{}, &statusError{code: resp.StatusCode, body: string(body)}
	}

	var listResp ListResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&listResp); decodeErr != nil {
		return Page{}, fmt.Errorf("decoding response: %w", decodeErr)
	}

	page := Page{Records: listResp.Records, Offset: listResp.Offset}

	c.logger.Debug(ctx, "List response received", map[string]interface{}{
		"operation": "list_request",
		"table":     tableID,
		"records":   len(page.Records),
		"offset":    page.Offset != "",
	})

	return page, nil
}

// doCreateRequest performs a batch create request with retry logic.
func (c *httpClient) doCreateRequest(ctx context.Context, baseID, tableID string, batch []Fields) ([]Record, error) {
	if len(batch) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds provider limit of %d records", len(batch), MaxBatchSize)
	}

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		attempts++
		if attempt > 0 {
			c.logger.Info(ctx, "Retrying create request", map[string]interface{}{
				"operation":   "create_request",
				"table":       tableID,
				"attempt":     attempt,
				"max_retries": c.maxRetries,
			})
		}

		created, err := c.doCreateRequestOnce(ctx, baseID, tableID, batch)
		if err == nil {
			return created, nil
		}

		lastErr = err

		if !c.shouldRetry(err, attempt) {
			break
		}

		if waitErr := c.waitBeforeRetry(ctx, attempt); waitErr != nil {
			return nil, waitErr
		}
	}

	return nil, fmt.Errorf("create request failed after %d attempts: %w", attempts, lastErr)
}

// doCreateRequestOnce performs a single batch create request.
func (c *httpClient) doCreateRequestOnce(ctx context.Context, baseID, tableID string, batch []Fields) ([]Record, error) {
	u, err := url.Parse(fmt.Sprintf("%s/v0/%s/%s", c.baseURL, baseID, tableID))
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}

	createReq := CreateRequest{Records: make([]CreateRecord, 0, len(batch))}
	for _, fields := range batch {
		createReq.Records = append(createReq.Records, CreateRecord{Fields: fields})
	}

	body, err := json.Marshal(createReq)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "wellside-insight/1.0")

	c.logger.Debug(ctx, "Making create request", map[string]interface{}{
		"operation": "create_request",
		"table":     tableID,
		"records":   len(batch),
		"method":    "POST",
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		resetTime := c.parseRateLimitReset(ctx, resp)
		if resetTime > 0 {
			return nil, &rateLimitError{resetIn: time.Duration(resetTime) * time.Second}
		}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error(ctx, "Create request failed", map[string]interface{}{
			"operation":   "create_request",
			"table":       tableID,
			"status_code": resp.StatusCode,
			"response":    string(respBody),
		})
		return nil, &statusError{code: resp.StatusCode, body: string(respBody)}
	}

	var createResp CreateResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&createResp); decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}

	return createResp.Records, nil
}

// shouldRetry determines if an error should trigger a retry. Throttling
// (429, with or without a reset header), server-side failures (5xx), and
// transport errors are retryable; other client errors are not.
func (c *httpClient) shouldRetry(err error, attempt int) bool {
	if attempt >= c.maxRetries {
		return false
	}

	var rateLimitErr *rateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.code == http.StatusTooManyRequests ||
			statusErr.code >= http.StatusInternalServerError
	}

	// Anything from the transport layer (timeouts, refused connections,
	// DNS failures) carries no status code and gets retried.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// waitBeforeRetry implements exponential backoff with jitter.
func (c *httpClient) waitBeforeRetry(ctx context.Context, attempt int) error {
	// Exponential backoff: baseDelay * exponentialBase^attempt.
	delay := time.Duration(float64(baseBackoffDelay) * math.Pow(exponentialBase, float64(attempt)))

	// Add jitter (±25%) as a fraction.
	//nolint:gosec // math/rand/v2 is acceptable for non-cryptographic jitter
	jitterFrac := rand.Float64()*jitterFraction - jitterOffset
	delay = time.Duration(float64(delay) * (1.0 + jitterFrac))

	if delay > maxBackoffDelay {
		delay = maxBackoffDelay
	}

	c.logger.Debug(ctx, "Waiting before retry", map[string]interface{}{
		"operation": "retry_backoff",
		"attempt":   attempt,
		"delay":     delay,
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// parseRateLimitReset extracts reset time from rate limit headers.
func (c *httpClient) parseRateLimitReset(ctx context.Context, resp *http.Response) int64 {
	resetStr := resp.Header.Get("X-RateLimit-Reset")
	if resetStr == "" {
		resetStr = resp.Header.Get("Retry-After")
	}
	if resetStr == "" {
		return 0
	}

	reset, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		c.logger.Warn(ctx, "Failed to parse rate limit reset header", map[string]interface{}{
			"operation": "parse_rate_limit",
			"value":     resetStr,
			"error":     err,
		})
		return 0
	}

	return reset
}

// redactURL removes sensitive information from URLs for logging.
func (c *httpClient) redactURL(rawURL string) string {
	// filterByFormula values can embed client or patient names.
	rawURL = redactQueryParam(rawURL, "filterByFormula")

	// Redact base identifiers in the path.
	rePath := regexp.MustCompile(`/v0/[^/?#]+`)
	rawURL = rePath.ReplaceAllString(rawURL, "/v0/****")

	return rawURL
}

// redactQueryParam redacts a query parameter value from a URL.
func redactQueryParam(rawURL, paramName string) string {
	re := regexp.MustCompile("([?&])" + regexp.QuoteMeta(paramName) + "=([^&]*)")
	return re.ReplaceAllString(rawURL, "$1"+paramName+"=****")
}

// rateLimitError represents a rate limiting error.
type rateLimitError struct {
	resetIn time.Duration
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited, reset in %v", e.resetIn)
}

// statusError represents a non-2xx API response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.code, e.body)
}
