package core

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		input string
		ok    bool
	}{
		{"2024-01-31", true},
		{"31.01.2024", true},
		{"31-01-2024", true},
		{"31/01/2024", true},
		{"2024/01/31", true},
		{"20240131", true},
		{" 2024-01-31 ", true},
		{"2024-13-01", false},
		{"jutro", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}

	// single digit day and month
	if got, ok := ParseDate("1.2.2024"); !ok || got.Month() != time.February || got.Day() != 1 {
		t.Errorf("ParseDate(1.2.2024) = %v, %v", got, ok)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
		ok    bool
	}{
		{"tak", true, true},
		{"TAK", true, true},
		{"nie", false, true},
		{"t", true, true},
		{"n", false, true},
		{"yes", true, true},
		{"false", false, true},
		{"1", true, true},
		{"0", false, true},
		{"może", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseBool(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseBool(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}

	if FormatBool(true) != "tak" || FormatBool(false) != "nie" {
		t.Error("FormatBool does not write tak/nie")
	}
}

func TestParseInteger(t *testing.T) {
	if n, ok := ParseInteger("+12"); !ok || n != 12 {
		t.Errorf("ParseInteger(+12) = %d, %v", n, ok)
	}
	if n, ok := ParseInteger("-3"); !ok || n != -3 {
		t.Errorf("ParseInteger(-3) = %d, %v", n, ok)
	}
	if _, ok := ParseInteger("1,5"); ok {
		t.Error("ParseInteger accepted a fraction")
	}
}

func TestToPgNumeric(t *testing.T) {
	d := decimal.RequireFromString("45.50")
	n := ToPgNumeric(d)
	if !n.Valid {
		t.Fatal("numeric not valid")
	}
	back := decimal.NewFromBigInt(n.Int, n.Exp)
	if !back.Equal(d) {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}

func TestToPgValue(t *testing.T) {
	day := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	if v := toPgValue(nil); v != nil {
		t.Errorf("nil -> %v", v)
	}
	if v, ok := toPgValue("abc").(pgtype.Text); !ok || v.String != "abc" {
		t.Errorf("string -> %#v", toPgValue("abc"))
	}
	if v, ok := toPgValue(int64(7)).(pgtype.Int8); !ok || v.Int64 != 7 {
		t.Errorf("int64 -> %#v", toPgValue(int64(7)))
	}
	if v, ok := toPgValue(true).(pgtype.Bool); !ok || !v.Bool {
		t.Errorf("bool -> %#v", toPgValue(true))
	}
	if v, ok := toPgValue(day).(pgtype.Date); !ok || !v.Time.Equal(day) {
		t.Errorf("time -> %#v", toPgValue(day))
	}
	if _, ok := toPgValue(decimal.NewFromInt(1)).(pgtype.Numeric); !ok {
		t.Errorf("decimal -> %#v", toPgValue(decimal.NewFromInt(1)))
	}
}

func TestUUIDHelpers(t *testing.T) {
	const id = "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	u := ToPgUUID(id)
	if !u.Valid || PgUUIDToString(u) != id {
		t.Errorf("round trip gave %q", PgUUIDToString(u))
	}
	if ToPgUUID("not-a-uuid").Valid {
		t.Error("invalid uuid accepted")
	}
	if PgUUIDToString(pgtype.UUID{}) != "" {
		t.Error("NULL uuid rendered")
	}
}

func TestCleanCell(t *testing.T) {
	tests := map[string]string{
		"  abc  ":    "abc",
		`="00123"`:   "00123",
		`  ="x"  `:   "x",
		`="`:         `="`,
		"plain text": "plain text",
	}
	for in, want := range tests {
		if got := CleanCell(in); got != want {
			t.Errorf("CleanCell(%q) = %q, want %q", in, got, want)
		}
	}
}
