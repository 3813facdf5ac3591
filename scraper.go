package sitecontacts

import "context"

// DefaultMaxContactPages bounds the contact pages visited per site.
const DefaultMaxContactPages = 3

// PageContacts holds the contacts found on one page.
type PageContacts struct {
	Emails []string
	Phones []string
}

// ContactExtractor pulls emails and phones out of a page.
type ContactExtractor interface {
	// ExtractContacts returns ordered, de-duplicated emails (lowercase) and
	// phones (normalized).
	ExtractContacts(html, pageURL string) (*PageContacts, error)
}

// ContactPageFinder finds same-site pages likely to list contacts.
type ContactPageFinder interface {
	// FindContactPages returns at most limit unique absolute URLs.
	FindContactPages(html, pageURL string, limit int) ([]string, error)
}

// ScrapeResult is the outcome of scraping one site. Failures are carried in
// Result, never returned as errors.
type ScrapeResult struct {
	// URL is the last URL requested for the homepage (after scheme fallback).
	URL    string
	Emails []string
	Phones []string
	// Pages counts successful page fetches.
	Pages  int
	Result ScrapingResult
	// Err is the transport or parse error behind a failed Result.
	Err error
}

// HasContacts reports whether any email or phone was found.
func (r *ScrapeResult) HasContacts() bool {
	return len(r.Emails) > 0 || len(r.Phones) > 0
}

// SiteScraper scrapes contacts from a single website.
type SiteScraper interface {
	Scrape(ctx context.Context, rawURL string) *ScrapeResult
}

// TableScraper scrapes every row of a table.
type TableScraper interface {
	// ScrapeTable returns one record per row, in row order. It returns an
	// error only when ctx is canceled; partial results must be discarded.
	ScrapeTable(ctx context.Context, t *Table, urlColumn string, progress ProgressFunc) ([]ContactRecord, error)
}

// ProgressFunc is called after each row completes.
type ProgressFunc func(done, total int)
