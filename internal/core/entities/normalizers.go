package entities

import (
	"strings"
	"unicode"
)

// digitsOnly drops everything but ASCII digits.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeIBAN removes spaces and dashes and upper-cases the country code.
// A bare 26 digit NRB (Polish domestic account number) gets the PL prefix.
func NormalizeIBAN(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	out := b.String()
	if len(out) == 26 && digitsOnly(out) == out {
		return "PL" + out
	}
	return out
}

// NormalizePhone turns a Polish number into +48XXXXXXXXX. Numbers that do
// not look Polish are returned with separators removed.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	plus := strings.HasPrefix(s, "+")
	digits := digitsOnly(s)

	switch {
	case len(digits) == 9:
		return "+48" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "48"):
		return "+" + digits
	case len(digits) == 13 && strings.HasPrefix(digits, "0048"):
		return "+" + digits[2:]
	case plus:
		return "+" + digits
	default:
		return digits
	}
}

// NormalizePostalCode writes five digit codes as NN-NNN.
func NormalizePostalCode(s string) string {
	d := digitsOnly(s)
	if len(d) != 5 {
		return strings.TrimSpace(s)
	}
	return d[:2] + "-" + d[2:]
}

// NormalizePESEL strips whitespace from a national id number.
func NormalizePESEL(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeApartment upper-cases apartment numbers and drops a leading
// "lok." or "m." marker, so "m. 12a" and "12A" match.
func NormalizeApartment(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, prefix := range []string{"lokal", "lok.", "m."} {
		if strings.HasPrefix(lower, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}
	return strings.ToUpper(s)
}
