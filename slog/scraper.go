package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecontacts"
)

// Ensure LoggingSiteScraper implements sitecontacts.SiteScraper.
var _ sitecontacts.SiteScraper = (*LoggingSiteScraper)(nil)

// LoggingSiteScraper logs one line per scraped site.
type LoggingSiteScraper struct {
	next   sitecontacts.SiteScraper
	logger *slog.Logger
}

// NewLoggingSiteScraper creates a new LoggingSiteScraper.
func NewLoggingSiteScraper(next sitecontacts.SiteScraper, logger *slog.Logger) *LoggingSiteScraper {
	return &LoggingSiteScraper{next: next, logger: logger}
}

func (s *LoggingSiteScraper) Scrape(ctx context.Context, rawURL string) (res *sitecontacts.ScrapeResult) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if res.Result.WebsiteStatus() == sitecontacts.WebsiteUnavailable {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "scrape",
			"url", rawURL,
			"result", string(res.Result),
			"emails", len(res.Emails),
			"phones", len(res.Phones),
			"pages", res.Pages,
			"duration", time.Since(begin),
			"err", res.Err,
		)
	}(time.Now())
	return s.next.Scrape(ctx, rawURL)
}
