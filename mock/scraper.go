package mock

import (
	"context"

	"github.com/fwojciec/sitecontacts"
)

var _ sitecontacts.SiteScraper = (*SiteScraper)(nil)

// SiteScraper is a mock implementation of sitecontacts.SiteScraper.
type SiteScraper struct {
	ScrapeFn func(ctx context.Context, rawURL string) *sitecontacts.ScrapeResult
}

func (s *SiteScraper) Scrape(ctx context.Context, rawURL string) *sitecontacts.ScrapeResult {
	return s.ScrapeFn(ctx, rawURL)
}

var _ sitecontacts.TableScraper = (*TableScraper)(nil)

// TableScraper is a mock implementation of sitecontacts.TableScraper.
type TableScraper struct {
	ScrapeTableFn func(ctx context.Context, t *sitecontacts.Table, urlColumn string, progress sitecontacts.ProgressFunc) ([]sitecontacts.ContactRecord, error)
}

func (s *TableScraper) ScrapeTable(ctx context.Context, t *sitecontacts.Table, urlColumn string, progress sitecontacts.ProgressFunc) ([]sitecontacts.ContactRecord, error) {
	return s.ScrapeTableFn(ctx, t, urlColumn, progress)
}
