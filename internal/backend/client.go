// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package backend

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/climbmap/internal/config"
	"github.com/tomtom215/climbmap/internal/metrics"
)

// Operation names used in errors, logs and metric labels
const (
	OpList          = "list"
	OpCreate        = "create"
	OpIncrementView = "increment_view"
)

// maxRetryDelay caps a server supplied Retry-After
const maxRetryDelay = 30 * time.Second

// Client talks to the observation backend over HTTP.
//
// Thread Safety: Safe for concurrent use. The rate limiter is shared by all calls.
type Client struct {
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a backend client from configuration.
//
// The client is configured with:
//   - cfg.Timeout as the per-request HTTP timeout
//   - an outbound token bucket of cfg.RateLimitRPS / cfg.RateLimitBurst (0 RPS disables it)
//   - cfg.ListingRetries retries for HTTP 429 on the listing, starting at cfg.RetryBaseDelay
func NewClient(cfg *config.BackendConfig) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		client:         &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.ListingRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
	if cfg.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	if c.retryBaseDelay <= 0 {
		c.retryBaseDelay = time.Second
	}
	return c
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// do sends one request. Transport failures and cancelled limiter waits become
// *ConnectivityError; the response is returned as-is for any status.
func (c *Client) do(ctx context.Context, op string, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ConnectivityError{Op: op, Err: err}
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordBackendCall(op, time.Since(start), "connectivity")
		return nil, &ConnectivityError{Op: op, Err: err}
	}

	kind := ""
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind = "response"
	}
	metrics.RecordBackendCall(op, time.Since(start), kind)
	return resp, nil
}

// doWithRateLimitRetry repeats a request while the backend answers HTTP 429.
// The delay doubles from retryBaseDelay unless the response carries Retry-After
// in seconds. The last 429 response is returned to the caller unconsumed.
func (c *Client) doWithRateLimitRetry(ctx context.Context, op string, newReq func() (*http.Request, error)) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := newReq()
		if err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, op, req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}

		delay := retryDelay(resp.Header.Get("Retry-After"), c.retryBaseDelay<<uint(attempt))
		_ = resp.Body.Close()
		metrics.BackendRateLimitRetries.Inc()

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, &ConnectivityError{Op: op, Err: ctx.Err()}
		}
	}
}

// retryDelay honours an integer Retry-After (RFC 6585), capped at maxRetryDelay.
func retryDelay(header string, fallback time.Duration) time.Duration {
	delay := fallback
	if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && seconds >= 0 {
		delay = time.Duration(seconds) * time.Second
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// isSuccessful decides what counts as a failure for the circuit breaker. The
// backend answering with a client error is healthy; only unreachability and
// 5xx responses trip the breaker.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	if re, ok := AsResponseError(err); ok {
		return re.StatusCode < 500
	}
	return false
}
