package core

// convert.go turns cleaned cell text into typed values and typed values
// into pgtype parameters for the batch writer.

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Date layouts accepted in import files. Day-first layouts come before
// month-first ones because files come from Polish offices.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006", "2.1.2006",
	"02-01-2006", "02/01/2006",
	"2006/01/02", "2006.01.02",
	"20060102",
}

// Accepted boolean spellings, Polish first.
var boolWords = map[string]bool{
	"tak": true, "t": true, "true": true, "yes": true, "y": true, "1": true,
	"nie": false, "n": false, "false": false, "no": false, "0": false, "f": false,
}

// ParseDate parses s with the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool understands tak/nie as well as the usual English spellings.
func ParseBool(s string) (bool, bool) {
	v, ok := boolWords[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// FormatBool renders a boolean the way the polish profile writes it.
func FormatBool(b bool) string {
	if b {
		return "tak"
	}
	return "nie"
}

// ParseInteger parses a whole number, tolerating a leading plus sign.
func ParseInteger(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "+"), 10, 64)
	return n, err == nil
}

// ToPgText returns a NULL text for blank input.
func ToPgText(s string) pgtype.Text {
	if strings.TrimSpace(s) == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate wraps a parsed date.
func ToPgDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// ToPgNumeric converts an exact decimal without going through float64.
func ToPgNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// ToPgBool wraps a boolean.
func ToPgBool(b bool) pgtype.Bool {
	return pgtype.Bool{Bool: b, Valid: true}
}

// ToPgInt8 wraps an integer.
func ToPgInt8(n int64) pgtype.Int8 {
	return pgtype.Int8{Int64: n, Valid: true}
}

// ToPgUUID parses s, returning a NULL UUID when it is not one.
func ToPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// PgUUIDToString renders a UUID, or "" for NULL.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// toPgValue converts a Record value into the parameter the writer sends.
func toPgValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return ToPgText(val)
	case decimal.Decimal:
		return ToPgNumeric(val)
	case int64:
		return ToPgInt8(val)
	case bool:
		return ToPgBool(val)
	case time.Time:
		return ToPgDate(val)
	default:
		return val
	}
}

// CleanCell strips whitespace and Excel's ="..." text guard from a cell.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}
