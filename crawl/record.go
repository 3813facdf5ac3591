package crawl

import (
	"slices"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/phone"
)

// BuildRecord turns a scrape result into the record of row. Phones sharing
// a core are collapsed and the country is inferred from phones, then from
// the website domain.
func BuildRecord(row int, rawURL string, res *sitecontacts.ScrapeResult) sitecontacts.ContactRecord {
	rec := sitecontacts.ContactRecord{
		Row:            row,
		URL:            rawURL,
		ScrapingResult: res.Result,
	}
	if res.Result == sitecontacts.ResultNoURL {
		rec.WebsiteStatus = res.Result.WebsiteStatus()
		return rec
	}

	rec.Emails = slices.Clone(res.Emails)
	rec.Phones = phone.Dedupe(res.Phones)
	rec.Country = phone.InferCountry(rec.Phones, rawURL)

	if rec.ScrapingResult == sitecontacts.ResultSuccess && len(rec.Emails) == 0 && len(rec.Phones) == 0 {
		rec.ScrapingResult = sitecontacts.ResultNoContacts
	}
	rec.WebsiteStatus = rec.ScrapingResult.WebsiteStatus()
	return rec
}
