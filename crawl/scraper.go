package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/fwojciec/sitecontacts"
)

var _ sitecontacts.SiteScraper = (*Scraper)(nil)

// Scraper collects contacts from one website: the homepage first, then up
// to MaxContactPages contact-like pages, stopping as soon as both an email
// and a phone are known.
type Scraper struct {
	Fetcher   sitecontacts.Fetcher
	Extractor sitecontacts.ContactExtractor
	Pages     sitecontacts.ContactPageFinder

	// Limiter spaces requests to the same site. Optional.
	Limiter sitecontacts.DomainLimiter

	// MaxContactPages defaults to sitecontacts.DefaultMaxContactPages.
	MaxContactPages int

	// Logger receives per-page debug events. Optional.
	Logger *slog.Logger
}

// NormalizeURL trims raw and prefixes https:// when it has no scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}

// contacts accumulates the contacts of a site in discovery order.
type contacts struct {
	emails, phones []string
	seen           map[string]struct{}
}

func (c *contacts) add(page *sitecontacts.PageContacts) {
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	for _, e := range page.Emails {
		if _, ok := c.seen["e:"+e]; !ok {
			c.seen["e:"+e] = struct{}{}
			c.emails = append(c.emails, e)
		}
	}
	for _, p := range page.Phones {
		if _, ok := c.seen["p:"+p]; !ok {
			c.seen["p:"+p] = struct{}{}
			c.phones = append(c.phones, p)
		}
	}
}

func (c *contacts) complete() bool {
	return len(c.emails) > 0 && len(c.phones) > 0
}

// Scrape never fails: transport and parse failures are reported in the
// result.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) *sitecontacts.ScrapeResult {
	if strings.TrimSpace(rawURL) == "" {
		return &sitecontacts.ScrapeResult{Result: sitecontacts.ResultNoURL}
	}

	res := &sitecontacts.ScrapeResult{URL: NormalizeURL(rawURL)}
	html, err := s.fetch(ctx, res.URL)
	if err != nil && ctx.Err() == nil {
		if rest, ok := cutScheme(res.URL, "https://"); ok {
			s.logger().Debug("falling back to http", "url", res.URL, "err", err)
			res.URL = "http://" + rest
			html, err = s.fetch(ctx, res.URL)
		}
	}
	if err != nil {
		res.Result = Classify(err)
		res.Err = err
		return res
	}
	res.Pages++

	var found contacts
	page, err := s.Extractor.ExtractContacts(html, res.URL)
	if err != nil {
		res.Result = sitecontacts.ResultError
		res.Err = err
		return res
	}
	found.add(page)

	if !found.complete() {
		s.exploreContactPages(ctx, html, res, &found)
	}

	res.Emails = found.emails
	res.Phones = found.phones
	res.Result = sitecontacts.ResultNoContacts
	if res.HasContacts() {
		res.Result = sitecontacts.ResultSuccess
	}
	return res
}

// exploreContactPages visits candidate pages in order until contacts are
// complete. A failing or unreadable page is skipped and the next candidate
// is tried; cancellation ends the exploration.
func (s *Scraper) exploreContactPages(ctx context.Context, homepage string, res *sitecontacts.ScrapeResult, found *contacts) {
	limit := s.MaxContactPages
	if limit <= 0 {
		limit = sitecontacts.DefaultMaxContactPages
	}

	candidates, err := s.Pages.FindContactPages(homepage, res.URL, limit)
	if err != nil {
		s.logger().Debug("contact page discovery failed", "url", res.URL, "err", err)
		return
	}

	for _, pageURL := range candidates {
		if found.complete() {
			return
		}
		html, err := s.fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger().Debug("contact page failed", "url", pageURL, "err", err)
			continue
		}
		res.Pages++
		page, err := s.Extractor.ExtractContacts(html, pageURL)
		if err != nil {
			s.logger().Debug("contact page unreadable", "url", pageURL, "err", err)
			continue
		}
		found.add(page)
	}
}

func (s *Scraper) fetch(ctx context.Context, rawURL string) (string, error) {
	if s.Limiter != nil {
		host := rawURL
		if u, err := url.Parse(rawURL); err == nil {
			host = u.Host
		}
		if err := s.Limiter.Wait(ctx, host); err != nil {
			return "", err
		}
	}
	return s.Fetcher.Fetch(ctx, rawURL)
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger == nil {
		return discardLogger
	}
	return s.Logger
}

var discardLogger = slog.New(slog.DiscardHandler)

func cutScheme(rawURL, scheme string) (string, bool) {
	if len(rawURL) < len(scheme) || !strings.EqualFold(rawURL[:len(scheme)], scheme) {
		return "", false
	}
	return rawURL[len(scheme):], true
}
