// Package search finds candidate images for text through several engines:
// DuckDuckGo, Pixabay, Pinterest, and a self-hosted SearXNG instance.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// retryStatuses are transient responses worth another attempt.
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client is an HTTP client hardened against flaky engines: retries with
// exponential backoff and jitter on transient statuses and network errors,
// and a browser User-Agent on every request.
type Client struct {
	HTTPClient *http.Client
	MaxRetries int
	BaseDelay  time.Duration
}

// NewClient returns a Client with the default resilience settings.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxRetries: 3,
		BaseDelay:  time.Second,
	}
}

// Get fetches rawURL with optional query params. The response is returned
// only on a 200; the caller owns the body.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*http.Response, error) {
	requestURL := rawURL
	if len(params) > 0 {
		requestURL = rawURL + "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.BaseDelay*time.Duration(1<<attempt) + time.Duration(rand.Int63n(int64(c.BaseDelay)+1))
			slog.Debug("Retrying request", "url", rawURL, "attempt", attempt+1, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		resp.Body.Close()
		if !retryStatuses[resp.StatusCode] {
			return nil, fmt.Errorf("request to %s returned status %d", rawURL, resp.StatusCode)
		}
		lastErr = fmt.Errorf("status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("request to %s failed after %d attempts: %w", rawURL, c.MaxRetries+1, lastErr)
}
