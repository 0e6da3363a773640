package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecimalConverter_Convert(t *testing.T) {
	conv := NewDecimalConverter(true)

	tests := []struct {
		name string
		text string
		sep  rune
		want string
	}{
		{"comma decimal", "45,50", ',', "45.5"},
		{"dot decimal", "45.50", '.', "45.5"},
		{"integer", "120", ',', "120"},
		{"negative", "-3,75", ',', "-3.75"},
		{"explicit plus", "+3,75", ',', "3.75"},
		{"leading separator", ",5", ',', "0.5"},
		{"negative leading separator", "-.5", '.', "-0.5"},
		{"trailing separator", "7,", ',', "7"},
		{"surrounding whitespace trimmed", "  12,5 ", ',', "12.5"},
		{"many decimals kept", "0,000001", ',', "0.000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.Convert(tt.text, tt.sep)
			if err != nil {
				t.Fatalf("Convert(%q) error: %v", tt.text, err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Convert(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestDecimalConverter_Rejects(t *testing.T) {
	conv := NewDecimalConverter(true)

	tests := []struct {
		name string
		text string
		sep  rune
	}{
		{"empty", "", ','},
		{"blank", "   ", ','},
		{"other separator", "45.50", ','},
		{"comma under dot profile", "45,50", '.'},
		{"thousands grouping", "1.234,56", ','},
		{"two separators", "1,2,3", ','},
		{"embedded space", "1 234,5", ','},
		{"nbsp grouping", "1\u00a0234", ','},
		{"currency", "12,50 zł", ','},
		{"exponent", "1e5", '.'},
		{"letters", "abc", ','},
		{"sign only", "-", ','},
		{"separator only", ",", ','},
		{"sign in the middle", "1-2", ','},
		{"unsupported separator", "12", ';'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := conv.Convert(tt.text, tt.sep)
			if err == nil {
				t.Fatalf("Convert(%q) succeeded, want error", tt.text)
			}
			if !errors.Is(err, ErrInvalidNumericFormat) {
				t.Errorf("error %v does not match ErrInvalidNumericFormat", err)
			}
		})
	}
}

func TestDecimalConverter_NoTrim(t *testing.T) {
	conv := NewDecimalConverter(false)
	if _, err := conv.Convert(" 1,5", ','); err == nil {
		t.Error("leading space accepted without trimming")
	}
}

func TestFormatDecimal_RoundTrip(t *testing.T) {
	conv := NewDecimalConverter(true)
	values := []string{"0", "45.5", "-3.75", "1234567.891", "0.000001", "100"}

	for _, v := range values {
		for _, sep := range []rune{',', '.'} {
			d := decimal.RequireFromString(v)
			text := FormatDecimal(d, sep)
			back, err := conv.Convert(text, sep)
			if err != nil {
				t.Fatalf("Convert(FormatDecimal(%s, %q)) error: %v", v, sep, err)
			}
			if !back.Equal(d) {
				t.Errorf("round trip of %s with %q gave %s", v, sep, back)
			}
		}
	}
}

func TestDecimalConverter_Idempotent(t *testing.T) {
	conv := NewDecimalConverter(true)
	first, err := conv.Convert("45,50", ',')
	if err != nil {
		t.Fatal(err)
	}
	second, err := conv.Convert(FormatDecimal(first, ','), ',')
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("second conversion %s differs from first %s", second, first)
	}
}
