package goquery

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitecontacts"
	"golang.org/x/net/publicsuffix"
)

// Ensure ContactPageFinder implements sitecontacts.ContactPageFinder at compile time.
var _ sitecontacts.ContactPageFinder = (*ContactPageFinder)(nil)

// contactKeywords match contact, about and legal pages in English and
// French (plus the German "impressum").
var contactKeywords = []string{
	"contact", "nous-contacter", "contactez", "contactez-nous",
	"about", "a-propos", "qui-sommes-nous",
	"mentions-legales", "mentions", "legal", "impressum",
	"privacy", "politique", "confidentialite",
}

var skipExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".svg": true, ".webp": true, ".zip": true, ".doc": true, ".docx": true,
	".xls": true, ".xlsx": true, ".mp3": true, ".mp4": true,
}

// ContactPageFinder selects links to contact-like pages of the same site.
type ContactPageFinder struct{}

// NewContactPageFinder creates a new ContactPageFinder.
func NewContactPageFinder() *ContactPageFinder {
	return &ContactPageFinder{}
}

// FindContactPages returns up to limit unique same-site URLs whose href or
// anchor text contains a contact keyword, in document order.
func (f *ContactPageFinder) FindContactPages(html, pageURL string, limit int) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "failed to parse HTML: %v", err)
	}

	self := withoutFragment(base).String()
	var pages orderedSet
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(pages.values) >= limit {
			return false
		}
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return true
		}
		text := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(sel.Text())), " ", "-")
		if !hasKeyword(strings.ToLower(href)) && !hasKeyword(text) {
			return true
		}

		u := resolveURL(base, href)
		if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
			return true
		}
		u = withoutFragment(u)
		if u.String() == self || skipExtensions[strings.ToLower(path.Ext(u.Path))] {
			return true
		}
		if !isSameSite(base, u) {
			return true
		}
		pages.add(u.String())
		return true
	})

	return pages.values, nil
}

func hasKeyword(s string) bool {
	for _, k := range contactKeywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// resolveURL resolves a relative URL against a base URL.
func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	return base.ResolveReference(ref)
}

func withoutFragment(u *url.URL) *url.URL {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return &c
}

// isSameSite reports whether u is on the base host or shares its
// registrable domain, so www and apex hosts match.
func isSameSite(base, u *url.URL) bool {
	if strings.EqualFold(base.Host, u.Host) {
		return true
	}
	a, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(base.Hostname()))
	if err != nil {
		return false
	}
	b, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
	if err != nil {
		return false
	}
	return a == b
}
