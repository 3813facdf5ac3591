package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/crawl"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	rawURL := strings.TrimSpace(c.URL)
	if rawURL == "" {
		fmt.Fprintf(deps.Stderr, "error: URL is required\n")
		return sitecontacts.Errorf(sitecontacts.EINVALID, "URL is required")
	}

	res := deps.Scraper.Scrape(deps.Ctx, rawURL)
	if err := deps.Ctx.Err(); err != nil {
		return err
	}
	rec := crawl.BuildRecord(0, rawURL, res)

	cols := rec.Columns()
	fmt.Fprintf(deps.Stdout, "URL:      %s\n", rawURL)
	fmt.Fprintf(deps.Stdout, "Status:   %s\n", rec.WebsiteStatus)
	fmt.Fprintf(deps.Stdout, "Result:   %s\n", rec.ScrapingResult)
	fmt.Fprintf(deps.Stdout, "Country:  %s\n", rec.Country)
	fmt.Fprintf(deps.Stdout, "Pages:    %d\n", res.Pages)
	if len(rec.Emails) > 0 {
		fmt.Fprintf(deps.Stdout, "Email:    %s\n", cols[sitecontacts.ColumnEmailPrimary])
		if extra := cols[sitecontacts.ColumnEmailAdditional]; extra != "" {
			fmt.Fprintf(deps.Stdout, "          %s\n", extra)
		}
	}
	if len(rec.Phones) > 0 {
		fmt.Fprintf(deps.Stdout, "Phone:    %s\n", rec.PrimaryPhone())
		if extra := rec.AdditionalPhones(); len(extra) > 0 {
			fmt.Fprintf(deps.Stdout, "          %s\n", strings.Join(extra, "; "))
		}
	}
	if res.Err != nil {
		fmt.Fprintf(deps.Stdout, "Reason:   %s\n", res.Err)
	}
	return nil
}
