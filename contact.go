package sitecontacts

import (
	"slices"
	"strings"
)

// WebsiteStatus tells whether a site answered at all.
type WebsiteStatus string

const (
	WebsiteOK          WebsiteStatus = "OK"
	WebsiteUnavailable WebsiteStatus = "Unavailable"
)

// ScrapingResult is the terminal outcome of scraping one row.
type ScrapingResult string

const (
	ResultSuccess          ScrapingResult = "Success"
	ResultNoContacts       ScrapingResult = "No Contacts Found"
	ResultTimeout          ScrapingResult = "Timeout"
	ResultConnectionFailed ScrapingResult = "Connection Failed"
	ResultDoesNotExist     ScrapingResult = "Does Not Exist"
	ResultError            ScrapingResult = "Error"
	ResultNoURL            ScrapingResult = "No URL"
)

// ScrapingResults lists every result in report order.
var ScrapingResults = []ScrapingResult{
	ResultSuccess,
	ResultNoContacts,
	ResultTimeout,
	ResultConnectionFailed,
	ResultDoesNotExist,
	ResultError,
	ResultNoURL,
}

// ParseScrapingResult matches s against the known results, ignoring case,
// spaces, hyphens and underscores, so "no-contacts-found" is accepted.
func ParseScrapingResult(s string) (ScrapingResult, error) {
	key := resultKey(s)
	for _, r := range ScrapingResults {
		if resultKey(string(r)) == key {
			return r, nil
		}
	}
	return "", Errorf(EINVALID, "unknown scraping result %q", s)
}

func resultKey(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
}

// WebsiteStatus derives the site status implied by the result.
func (r ScrapingResult) WebsiteStatus() WebsiteStatus {
	switch r {
	case ResultSuccess, ResultNoContacts:
		return WebsiteOK
	default:
		return WebsiteUnavailable
	}
}

// CountryUnknown is the country of a site nothing could be inferred from.
const CountryUnknown = "UNK"

// Output columns written for every processed row.
const (
	ColumnEmailPrimary    = "Email_Primary"
	ColumnEmailAdditional = "Email_Additional"
	ColumnCountry         = "Country"
	ColumnPhonePrimary    = "Phone_Primary"
	ColumnPhoneAdditional = "Phone_Additional"
	ColumnWebsiteStatus   = "Website_Status"
	ColumnScrapingResult  = "Scraping_Result"
)

// OutputColumns lists the output columns in artifact order.
var OutputColumns = []string{
	ColumnEmailPrimary,
	ColumnEmailAdditional,
	ColumnCountry,
	ColumnPhonePrimary,
	ColumnPhoneAdditional,
	ColumnWebsiteStatus,
	ColumnScrapingResult,
}

// PhoneMarker prefixes phone cells so spreadsheets keep the leading "+".
const PhoneMarker = "'"

// listSeparator joins additional emails and phones in one cell.
const listSeparator = "; "

// ContactRecord is the outcome of scraping one input row.
type ContactRecord struct {
	Row            int
	URL            string
	Emails         []string
	Phones         []string
	Country        string
	WebsiteStatus  WebsiteStatus
	ScrapingResult ScrapingResult
}

// Validate returns an error if the outcome fields contradict the data.
func (r *ContactRecord) Validate() error {
	hasContacts := len(r.Emails) > 0 || len(r.Phones) > 0
	if hasContacts != (r.ScrapingResult == ResultSuccess) {
		return Errorf(EINVALID, "row %d: result %q inconsistent with %d emails and %d phones",
			r.Row, r.ScrapingResult, len(r.Emails), len(r.Phones))
	}
	if r.WebsiteStatus != r.ScrapingResult.WebsiteStatus() {
		return Errorf(EINVALID, "row %d: status %q inconsistent with result %q", r.Row, r.WebsiteStatus, r.ScrapingResult)
	}
	return nil
}

// PrimaryEmail returns the first email found, or "".
func (r *ContactRecord) PrimaryEmail() string {
	if len(r.Emails) == 0 {
		return ""
	}
	return r.Emails[0]
}

// AdditionalEmails returns the remaining emails sorted.
func (r *ContactRecord) AdditionalEmails() []string {
	return sortedTail(r.Emails)
}

// PrimaryPhone returns the first phone found, or "".
func (r *ContactRecord) PrimaryPhone() string {
	if len(r.Phones) == 0 {
		return ""
	}
	return r.Phones[0]
}

// AdditionalPhones returns the remaining phones sorted.
func (r *ContactRecord) AdditionalPhones() []string {
	return sortedTail(r.Phones)
}

func sortedTail(values []string) []string {
	if len(values) < 2 {
		return nil
	}
	tail := slices.Clone(values[1:])
	slices.Sort(tail)
	return tail
}

// Columns returns the output cells of the record keyed by column name.
func (r *ContactRecord) Columns() map[string]string {
	phone := ""
	if p := r.PrimaryPhone(); p != "" {
		phone = PhoneMarker + p
	}
	extra := r.AdditionalPhones()
	marked := make([]string, len(extra))
	for i, p := range extra {
		marked[i] = PhoneMarker + p
	}
	return map[string]string{
		ColumnEmailPrimary:    r.PrimaryEmail(),
		ColumnEmailAdditional: strings.Join(r.AdditionalEmails(), listSeparator),
		ColumnCountry:         r.Country,
		ColumnPhonePrimary:    phone,
		ColumnPhoneAdditional: strings.Join(marked, listSeparator),
		ColumnWebsiteStatus:   string(r.WebsiteStatus),
		ColumnScrapingResult:  string(r.ScrapingResult),
	}
}

// ApplyTo writes the output cells of the record into row of t. Other
// cells are left untouched.
func (r *ContactRecord) ApplyTo(t *Table, row int) {
	cols := r.Columns()
	for _, name := range OutputColumns {
		t.SetValue(row, name, cols[name])
	}
}

// RecordFromTable reads the output cells of row back into a record.
func RecordFromTable(t *Table, row int, urlColumn string) ContactRecord {
	rec := ContactRecord{
		Row:            row,
		URL:            strings.TrimSpace(t.Value(row, urlColumn)),
		Country:        t.Value(row, ColumnCountry),
		WebsiteStatus:  WebsiteStatus(t.Value(row, ColumnWebsiteStatus)),
		ScrapingResult: ScrapingResult(t.Value(row, ColumnScrapingResult)),
	}
	if e := t.Value(row, ColumnEmailPrimary); e != "" {
		rec.Emails = append(rec.Emails, e)
	}
	rec.Emails = append(rec.Emails, SplitList(t.Value(row, ColumnEmailAdditional))...)
	if p := strings.TrimPrefix(t.Value(row, ColumnPhonePrimary), PhoneMarker); p != "" {
		rec.Phones = append(rec.Phones, p)
	}
	for _, p := range SplitList(t.Value(row, ColumnPhoneAdditional)) {
		rec.Phones = append(rec.Phones, strings.TrimPrefix(p, PhoneMarker))
	}
	return rec
}

// SplitList splits a multi-value cell, dropping blanks.
func SplitList(cell string) []string {
	var out []string
	for _, v := range strings.Split(cell, ";") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
