// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package xmplaylist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/logging"
)

const (
	// maxErrorBodySize limits how much of an error response body is read
	maxErrorBodySize = 64 * 1024

	// maxRateLimitRetries is how many times a 429 is retried within one request
	maxRateLimitRetries = 2

	// maxRetryAfter caps the wait requested by a Retry-After header
	maxRetryAfter = 60 * time.Second

	defaultRetryAfter = time.Second
)

// Fetcher fetches one station's recent plays. Client and
// CircuitBreakerClient both implement it.
type Fetcher interface {
	FetchStation(ctx context.Context, station string) (*StationResponse, error)
}

// Client is the HTTP client for the playlist provider.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client

	// sleep waits between rate-limit retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client from the poller config.
func NewClient(cfg *config.PollerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		sleep:      sleepContext,
	}
}

// FetchStation returns the station's recent plays from GET {base}{station}.
func (c *Client) FetchStation(ctx context.Context, station string) (*StationResponse, error) {
	reqURL := c.baseURL + url.PathEscape(station)

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
	}

	var result StationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode station %s response: %w", station, err)
	}
	return &result, nil
}

func (c *Client) newRequest(ctx context.Context, reqURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// doRequestWithRateLimit executes the request, retrying HTTP 429 up to
// maxRateLimitRetries times. Retry-After (seconds) is honored up to
// maxRetryAfter. Any other status is returned to the caller.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := c.newRequest(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt == maxRateLimitRetries {
			return resp, nil
		}

		retryDelay := parseRetryAfter(resp.Header.Get("Retry-After"))
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		resp.Body.Close()

		logging.Warn().
			Str("url", reqURL).
			Dur("retry_delay", retryDelay).
			Int("attempt", attempt+1).
			Int("max_retries", maxRateLimitRetries).
			Msg("Playlist API rate limited (HTTP 429), retrying")

		if err := c.sleep(ctx, retryDelay); err != nil {
			return nil, err
		}
	}
}

// parseRetryAfter reads a Retry-After value in seconds. Missing or
// unparseable values fall back to one second; large values are capped.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	d := time.Duration(seconds) * time.Second
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}

// readBodyForError reads at most maxErrorBodySize bytes of an error body
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
