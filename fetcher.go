package sitecontacts

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch returns the decoded HTML body of url. Error statuses are
	// reported as *StatusError.
	// The context controls cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	Close() error
}

// DomainLimiter provides per-site rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the host.
	// Hosts of one registrable domain may share a limit. Returns an error
	// if the context is canceled.
	Wait(ctx context.Context, host string) error
}
