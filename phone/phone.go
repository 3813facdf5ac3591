// Package phone normalizes scraped phone numbers and infers countries from
// dialing codes and domain names.
package phone

import (
	"regexp"
	"strings"
)

const (
	minDigits = 9
	maxDigits = 15
	coreLen   = 9
)

// zeroMarker matches the "(0)" or "[0]" trunk prefix written inside
// international numbers, as in "+33 (0)4 79 05 95 22".
var zeroMarker = regexp.MustCompile(`[(\[]\s*0\s*[)\]]`)

// Normalize canonicalizes a raw phone string. Numbers with international
// intent (leading "+" or "00", or a known dialing code on a long number)
// become "+digits". A 10-digit local number starting with 0 is returned as
// bare digits: its country cannot be known from the number alone. The bool
// is false when raw is not a plausible phone number.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(zeroMarker.ReplaceAllString(raw, ""))

	international := false
	if rest, ok := strings.CutPrefix(s, "00"); ok {
		s = "+" + rest
		international = true
	} else if strings.HasPrefix(s, "+") {
		international = true
	}

	digits := Digits(s)
	if len(digits) < minDigits || len(digits) > maxDigits {
		return "", false
	}

	if !international && digits[0] == '0' && len(digits) == 10 {
		return digits, true
	}

	if !international && len(digits) >= 11 {
		for n := 3; n >= 1; n-- {
			if IsDialingCode(digits[:n]) {
				international = true
				break
			}
		}
	}

	if !international {
		return digits, true
	}

	digits = dropTrunkZero(digits)
	if len(digits) < 10 {
		return "", false
	}
	return "+" + digits, true
}

// dropTrunkZero removes a "0" written between a 2 or 3 digit dialing code
// and a 9 digit subscriber number ("330479059522" → "33479059522").
func dropTrunkZero(digits string) string {
	for _, n := range []int{3, 2} {
		if len(digits) == n+1+coreLen && digits[n] == '0' && IsDialingCode(digits[:n]) {
			return digits[:n] + digits[n+1:]
		}
	}
	return digits
}

// Digits returns only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Core returns the last nine digits of a number, which identify it
// regardless of how its country prefix was written.
func Core(number string) string {
	d := Digits(number)
	if len(d) <= coreLen {
		return d
	}
	return d[len(d)-coreLen:]
}

// Dedupe normalizes numbers and drops those whose core was already seen.
// The first representation discovered is kept. Invalid numbers are dropped.
func Dedupe(numbers []string) []string {
	seen := make(map[string]struct{}, len(numbers))
	var out []string
	for _, raw := range numbers {
		n, ok := Normalize(raw)
		if !ok {
			continue
		}
		core := Core(n)
		if _, dup := seen[core]; dup {
			continue
		}
		seen[core] = struct{}{}
		out = append(out, n)
	}
	return out
}

// IsImplausible reports digit strings that look like placeholders or
// identifiers: a single repeated digit or a run of consecutive digits.
func IsImplausible(digits string) bool {
	if len(digits) < 2 {
		return false
	}
	same, up, down := true, true, true
	for i := 1; i < len(digits); i++ {
		prev, cur := digits[i-1]-'0', digits[i]-'0'
		if cur != prev {
			same = false
		}
		if cur != (prev+1)%10 {
			up = false
		}
		if cur != (prev+9)%10 {
			down = false
		}
	}
	return same || up || down
}
