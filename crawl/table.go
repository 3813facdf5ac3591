package crawl

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/sitecontacts"
	"golang.org/x/sync/errgroup"
)

var _ sitecontacts.TableScraper = (*TableScraper)(nil)

// TableScraper scrapes the website of every row of a table with a bounded
// number of workers.
type TableScraper struct {
	Scraper sitecontacts.SiteScraper

	// Concurrency defaults to 1, which processes rows strictly in order.
	Concurrency int

	// SiteDelay is the pause a worker takes after each site.
	SiteDelay time.Duration
}

// ScrapeTable returns one record per row in row order. Rows without a URL
// are recorded as NoURL without any request. If ctx is canceled the partial
// results are dropped and ctx.Err() is returned.
func (s *TableScraper) ScrapeTable(ctx context.Context, t *sitecontacts.Table, urlColumn string, progress sitecontacts.ProgressFunc) ([]sitecontacts.ContactRecord, error) {
	if err := t.RequireColumns(urlColumn); err != nil {
		return nil, err
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	records := make([]sitecontacts.ContactRecord, t.Len())
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for row := range t.Rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rawURL := strings.TrimSpace(t.Value(row, urlColumn))
			res := &sitecontacts.ScrapeResult{Result: sitecontacts.ResultNoURL}
			if rawURL != "" {
				res = s.Scraper.Scrape(gctx, rawURL)
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			records[row] = BuildRecord(row, rawURL, res)

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(records))
			}
			mu.Unlock()

			if rawURL != "" && row < len(records)-1 {
				return sleep(gctx, s.SiteDelay)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
