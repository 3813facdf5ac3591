package crawl

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/sitecontacts"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

var _ sitecontacts.DomainLimiter = (*DomainLimiter)(nil)

// pruneThreshold is the number of tracked sites above which idle limiters
// are dropped.
const pruneThreshold = 256

// DomainLimiter spaces requests to the same site by a fixed delay using
// token buckets. Hosts are grouped by registrable domain, so www.acme.fr
// and acme.fr share one bucket. Requests to different sites do not wait on
// each other.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a DomainLimiter allowing one request per delay
// for each site. A zero delay disables limiting.
func NewDomainLimiter(delay time.Duration) *DomainLimiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until the rate limit allows a request to the host.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	if d.limit == rate.Inf {
		return ctx.Err()
	}

	key := SiteKey(host)

	d.mu.Lock()
	limiter, ok := d.limiters[key]
	if !ok {
		if len(d.limiters) >= pruneThreshold {
			d.pruneLocked()
		}
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[key] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// Len returns the number of sites currently tracked.
func (d *DomainLimiter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.limiters)
}

// pruneLocked drops limiters whose bucket has refilled. Such a limiter
// behaves like a new one, so dropping it never shortens a delay.
func (d *DomainLimiter) pruneLocked() {
	for key, limiter := range d.limiters {
		if limiter.Tokens() >= 1 {
			delete(d.limiters, key)
		}
	}
}

// SiteKey returns the registrable domain of host ("www.acme.fr" →
// "acme.fr"), lowercased and without port. Hosts without one, such as IP
// addresses and localhost, are returned as is.
func SiteKey(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if net.ParseIP(host) != nil {
		return host
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}
