package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DecimalConverter parses numbers written with a locale decimal separator.
//
// Only the requested separator is accepted as the decimal point. Thousands
// grouping, currency symbols, exponents and the other separator character
// are rejected rather than guessed at.
type DecimalConverter struct {
	TrimWhitespace bool
}

// NewDecimalConverter returns a converter; trim controls whether surrounding
// whitespace is removed before parsing.
func NewDecimalConverter(trim bool) DecimalConverter {
	return DecimalConverter{TrimWhitespace: trim}
}

// Convert parses text using sep ('.' or ',') as the decimal point.
// Failures wrap ErrInvalidNumericFormat.
func (c DecimalConverter) Convert(text string, sep rune) (decimal.Decimal, error) {
	s := text
	if c.TrimWhitespace {
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return decimal.Zero, &NumericFormatError{Text: text, Reason: "empty value"}
	}
	if sep != '.' && sep != ',' {
		return decimal.Zero, &NumericFormatError{Text: text, Reason: "unsupported decimal separator " + string(sep)}
	}

	var (
		b      strings.Builder
		seps   int
		digits int
	)
	b.Grow(len(s))

	for i, r := range s {
		switch {
		case (r == '-' || r == '+') && i == 0:
			if r == '-' {
				b.WriteRune(r)
			}
		case r == sep:
			seps++
			if seps > 1 {
				return decimal.Zero, &NumericFormatError{Text: text, Reason: "more than one decimal separator"}
			}
			b.WriteByte('.')
		case r >= '0' && r <= '9':
			digits++
			b.WriteRune(r)
		case r == '.' || r == ',':
			return decimal.Zero, &NumericFormatError{Text: text, Reason: "unexpected separator " + string(r)}
		case unicode.IsSpace(r):
			return decimal.Zero, &NumericFormatError{Text: text, Reason: "embedded whitespace"}
		default:
			return decimal.Zero, &NumericFormatError{Text: text, Reason: "unexpected character " + string(r)}
		}
	}

	if digits == 0 {
		return decimal.Zero, &NumericFormatError{Text: text, Reason: "no digits"}
	}

	canonical := b.String()
	if strings.HasPrefix(canonical, ".") || strings.HasPrefix(canonical, "-.") {
		canonical = strings.Replace(canonical, ".", "0.", 1)
	}
	canonical = strings.TrimSuffix(canonical, ".")

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, &NumericFormatError{Text: text, Reason: err.Error()}
	}
	return d, nil
}

// FormatDecimal renders d with sep as the decimal point. It is the inverse
// of Convert: Convert(FormatDecimal(x, sep), sep) equals x.
func FormatDecimal(d decimal.Decimal, sep rune) string {
	s := d.String()
	if sep == '.' {
		return s
	}
	return strings.Replace(s, ".", string(sep), 1)
}
