// Package contact canonicalizes visitor phone numbers and emails into dedup keys.
// Every function here is pure: the same raw input always yields the same output.
package contact

import (
	"strings"
)

// DefaultCountryCode is used when a Normalizer is built without one.
const DefaultCountryCode = "1"

// Phone is a normalized phone number. Confident is false when the input did not look
// like a national or international number for the configured country; such values
// still work as exact-match keys but may not be deliverable.
type Phone struct {
	Value     string
	Confident bool
}

// Empty reports whether no phone was captured.
func (p Phone) Empty() bool {
	return p.Value == ""
}

// Normalizer normalizes contact fields for one default country code.
type Normalizer struct {
	countryCode string
}

// NewNormalizer returns a Normalizer for the given country calling code (digits only, e.g. "1").
func NewNormalizer(countryCode string) *Normalizer {
	cc := digitsOnly(countryCode)
	if cc == "" {
		cc = DefaultCountryCode
	}
	return &Normalizer{countryCode: cc}
}

// CountryCode returns the configured default country code.
func (n *Normalizer) CountryCode() string {
	return n.countryCode
}

// Phone strips everything but digits and converts to E.164 when it can:
// national-length numbers get the default country code, numbers already carrying the
// country code get a "+" prefix. Anything else is returned as bare digits, not confident.
func (n *Normalizer) Phone(raw string) Phone {
	digits := digitsOnly(raw)
	if digits == "" {
		return Phone{}
	}
	national := 10
	switch {
	case len(digits) == national+len(n.countryCode) && strings.HasPrefix(digits, n.countryCode):
		return Phone{Value: "+" + digits, Confident: true}
	case len(digits) == national:
		return Phone{Value: "+" + n.countryCode + digits, Confident: true}
	}
	return Phone{Value: digits, Confident: false}
}

// Email lowercases and trims. Syntax is checked by callers.
func (n *Normalizer) Email(raw string) string {
	return NormalizeEmail(raw)
}

// NormalizeEmail lowercases and trims raw.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Mask hides most of a phone or email for logs: "+1503***0100", "b***@example.com".
func Mask(v string) string {
	if at := strings.IndexByte(v, '@'); at > 0 {
		return v[:1] + "***" + v[at:]
	}
	if len(v) <= 8 {
		return "***"
	}
	return v[:5] + "***" + v[len(v)-4:]
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
