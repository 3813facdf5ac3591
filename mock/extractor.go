package mock

import "github.com/fwojciec/sitecontacts"

var _ sitecontacts.ContactExtractor = (*ContactExtractor)(nil)

// ContactExtractor is a mock implementation of sitecontacts.ContactExtractor.
type ContactExtractor struct {
	ExtractContactsFn func(html, pageURL string) (*sitecontacts.PageContacts, error)
}

func (e *ContactExtractor) ExtractContacts(html, pageURL string) (*sitecontacts.PageContacts, error) {
	return e.ExtractContactsFn(html, pageURL)
}

var _ sitecontacts.ContactPageFinder = (*ContactPageFinder)(nil)

// ContactPageFinder is a mock implementation of sitecontacts.ContactPageFinder.
type ContactPageFinder struct {
	FindContactPagesFn func(html, pageURL string, limit int) ([]string, error)
}

func (f *ContactPageFinder) FindContactPages(html, pageURL string, limit int) ([]string, error) {
	return f.FindContactPagesFn(html, pageURL, limit)
}
