package crawl

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/sitecontacts"
)

var _ sitecontacts.Fetcher = (*RetryingFetcher)(nil)

// BackoffDelays returns n doubling delays starting at one second.
func BackoffDelays(n int) []time.Duration {
	delays := make([]time.Duration, n)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// RetryingFetcher retries transient failures of Next: timeouts and the
// 429, 502, 503 and 504 statuses. Every other error is returned at once.
type RetryingFetcher struct {
	Next sitecontacts.Fetcher

	// Delays holds the wait before each retry; its length is the number
	// of retries.
	Delays []time.Duration

	Logger *slog.Logger
}

func (f *RetryingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(f.Delays); attempt++ {
		html, err := f.Next.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt == len(f.Delays) || !IsTransient(err) {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if f.Logger != nil {
			f.Logger.Debug("retrying fetch", "url", url, "attempt", attempt+2, "err", err)
		}

		if err := sleep(ctx, f.Delays[attempt]); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (f *RetryingFetcher) Close() error {
	return f.Next.Close()
}

// IsTransient reports whether err may succeed on a later attempt.
func IsTransient(err error) bool {
	var statusErr *sitecontacts.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return Classify(err) == sitecontacts.ResultTimeout
}
