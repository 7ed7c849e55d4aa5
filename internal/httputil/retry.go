// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the fetch sources.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Tests override it.
var RetryBaseDelay = 10 * time.Second

// MaxRetryDelay caps both computed backoff and server-sent Retry-After.
var MaxRetryDelay = 5 * time.Minute

// DefaultMaxRetries is used when maxRetries is 0.
const DefaultMaxRetries = 5

// DoWithRetry sends req and retries on HTTP 429 (Too Many Requests). The
// delay honours a Retry-After header given in seconds and otherwise doubles
// from RetryBaseDelay on each attempt.
//
// A nil client means http.DefaultClient. maxRetries of 0 selects
// DefaultMaxRetries; a negative value disables retrying. After the last attempt the 429 response is returned unread so
// the caller can report its status. A context cancelled while waiting
// returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log *zap.Logger) (*http.Response, error) {
	switch {
	case maxRetries == 0:
		maxRetries = DefaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		log.Info("rate limited, retrying",
			zap.String("url", req.URL.Redacted()),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, MaxRetryDelay)
	}
	d := RetryBaseDelay
	for i := 0; i < attempt; i++ {
		if d >= MaxRetryDelay {
			break
		}
		d *= 2
	}
	return min(d, MaxRetryDelay)
}
