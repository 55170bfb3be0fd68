package nlp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// Client is the low-level GhanaNLP HTTP client. All calls pass through a
// shared rate limiter so bursts of chat traffic cannot exhaust the
// upstream quota.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a GhanaNLP client for the given base URL and API key.
func NewClient(baseURL, apiKey string, timeout time.Duration, ratePerSec float64) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), int(ratePerSec)+1),
	}
}

// post sends a request body to path and returns the raw response body.
// Any transport failure or non-2xx status maps to ErrUpstreamUnavailable.
func (c *Client) post(ctx context.Context, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, query, contentType, body)
}

// get fetches path and returns the raw response body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, "", nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrUpstreamUnavailable, err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build nlp request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, truncateForLog(payload))
	}
	return payload, nil
}

func truncateForLog(payload []byte) string {
	const max = 200
	if len(payload) > max {
		return string(payload[:max]) + "..."
	}
	return string(payload)
}
