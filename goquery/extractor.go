// Package goquery implements contact extraction and contact-page discovery
// on top of github.com/PuerkitoBio/goquery.
package goquery

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/phone"
	"github.com/mcnijman/go-emailaddress"
	"golang.org/x/net/html"
)

// Ensure Extractor implements sitecontacts.ContactExtractor at compile time.
var _ sitecontacts.ContactExtractor = (*Extractor)(nil)

// Link prefixes carrying an email address. Some sites use typos or
// non-standard schemes for the same purpose.
var emailLinkPrefixes = []string{"mailto:", "goto:", "email:", "e-mail:", "mail:"}

// Link prefixes carrying a phone number.
var phoneLinkPrefixes = []string{"tel:", "callto:", "call:", "phone:"}

// Domains that look like emails in srcset attributes and image names
// ("logo@2x.png").
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

var (
	// Decimal numbers with at least four fractional digits, as in GPS
	// coordinates.
	coordinatePattern = regexp.MustCompile(`[-+]?\d{1,3}\.\d{4,}`)
	coordinateWords   = regexp.MustCompile(`(?i)°|\b(?:latitude|longitude|lat|lng|lon|coords?|gps)\b`)
	decimalPattern    = regexp.MustCompile(`^\d+\.\d{4,}`)

	// Country code then an optional "(0)" trunk prefix.
	intlPrefix = `(?:\+|\b00)\s*[1-9]\d{0,2}[\s.\-]*(?:\(0\)[\s.\-]*)?`

	// Each shape captures the number in group 1 and must be followed by a
	// non-digit, so a trailing postcode or second number is never absorbed.
	phonePatterns = []*regexp.Regexp{
		// +33 4 91 54 19 52, 0033 (0)4.91.54.19.52
		regexp.MustCompile(`(` + intlPrefix + `[1-9](?:[\s.\-]*\d{2}){4})(?:\D|$)`),
		// +44 20 7946 0958, +1 212-555-0100
		regexp.MustCompile(`(` + intlPrefix + `\d{1,4}[\s.\-]\d{3,4}[\s.\-]\d{3,4})(?:\D|$)`),
		// +49 30 1234567
		regexp.MustCompile(`(` + intlPrefix + `\d{1,4}[\s.\-]\d{5,8})(?:\D|$)`),
		// +33491541952
		regexp.MustCompile(`((?:\+|\b00)[1-9]\d{8,13})(?:\D|$)`),
		// 04 91 54 19 52, 04.91.54.19.52, 0491541952
		regexp.MustCompile(`(\b0[1-9](?:[\s.\-]?\d{2}){4})(?:\D|$)`),
		// 020 7946 0958, 030 1234567
		regexp.MustCompile(`(\b0\d{2,4}[\s.\-/]?\d{3,4}[\s.\-]?\d{3,4})(?:\D|$)`),
	}
)

// Elements whose text is never visible.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Extractor finds emails and phone numbers in HTML pages.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractContacts parses html and returns its emails and phones.
func (e *Extractor) ExtractContacts(htmlContent, pageURL string) (*sitecontacts.PageContacts, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "failed to parse HTML: %v", err)
	}

	text := VisibleText(doc)
	return &sitecontacts.PageContacts{
		Emails: extractEmails(doc, text),
		Phones: extractPhones(doc, text),
	}, nil
}

// VisibleText returns the text nodes of doc outside script and style
// elements, one per line.
func VisibleText(doc *goquery.Document) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if hiddenElements[n.Data] {
				return
			}
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				b.WriteString(s)
				b.WriteByte('\n')
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return b.String()
}

func extractEmails(doc *goquery.Document, text string) []string {
	var set orderedSet

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		value, ok := cutPrefixFold(strings.TrimSpace(href), emailLinkPrefixes)
		if !ok {
			return
		}
		value, _, _ = strings.Cut(value, "?")
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		value = strings.ToLower(removeSpace(value))
		if !strings.Contains(value, "@") || !strings.Contains(value, ".") {
			return
		}
		if isEmail(value) {
			set.add(value)
		}
	})

	for _, addr := range emailaddress.Find([]byte(text), false) {
		if value := strings.ToLower(addr.String()); isEmail(value) {
			set.add(value)
		}
	}
	return set.values
}

func isEmail(value string) bool {
	if _, err := emailaddress.Parse(value); err != nil {
		return false
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(value, suffix) {
			return false
		}
	}
	return true
}

func extractPhones(doc *goquery.Document, text string) []string {
	var linked orderedSet
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		value, ok := cutPrefixFold(strings.TrimSpace(href), phoneLinkPrefixes)
		if !ok {
			return
		}
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		if n, ok := phone.Normalize(value); ok {
			linked.add(n)
		}
	})
	// Explicit phone links win over text heuristics.
	if len(linked.values) > 0 {
		return linked.values
	}

	var found orderedSet
	for _, line := range strings.Split(text, "\n") {
		if looksLikeCoordinates(line) {
			continue
		}
		for _, pattern := range phonePatterns {
			for _, match := range pattern.FindAllStringSubmatch(line, -1) {
				if n, ok := textPhone(match[1]); ok {
					found.add(n)
				}
			}
		}
	}
	return found.values
}

// textPhone validates and normalizes a phone number matched in free text.
func textPhone(match string) (string, bool) {
	match = strings.TrimSpace(match)
	if decimalPattern.MatchString(strings.ReplaceAll(match, ",", ".")) {
		return "", false
	}
	if len(phone.Digits(match)) < 9 {
		return "", false
	}
	if !strings.HasPrefix(match, "+") && !strings.HasPrefix(match, "0") {
		return "", false
	}
	n, ok := phone.Normalize(match)
	if !ok || phone.IsImplausible(phone.Digits(n)) {
		return "", false
	}
	return n, true
}

func looksLikeCoordinates(line string) bool {
	return len(coordinatePattern.FindAllString(line, 2)) >= 2 || coordinateWords.MatchString(line)
}

// cutPrefixFold strips the first matching prefix, ignoring case.
func cutPrefixFold(s string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return s[len(p):], true
		}
	}
	return "", false
}

func removeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func (s *orderedSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}
