package core

import (
	"errors"
	"testing"
)

func TestProfileResolver_Presets(t *testing.T) {
	r := NewProfileResolver(500, 20)

	tests := []struct {
		name     string
		delim    rune
		decimal  rune
		encoding Encoding
		detect   bool
	}{
		{ProfileDefault, ',', '.', EncodingAuto, true},
		{ProfilePolish, ';', ',', EncodingUTF8, false},
		{ProfileInternational, ',', '.', EncodingUTF8, false},
		{ProfileExcel, ';', ',', EncodingWindows1250, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			if p.Delimiter != tt.delim || p.DecimalSeparator != tt.decimal {
				t.Errorf("got delimiter %q decimal %q", p.Delimiter, p.DecimalSeparator)
			}
			if p.Encoding != tt.encoding {
				t.Errorf("Encoding = %s, want %s", p.Encoding, tt.encoding)
			}
			if p.AutoDetectDelimiter != tt.detect {
				t.Errorf("AutoDetectDelimiter = %v", p.AutoDetectDelimiter)
			}
			if !p.SkipHeader || !p.TrimWhitespace || !p.SkipEmptyRows {
				t.Error("presets skip the header, trim and skip empty rows")
			}
			if p.BatchSize != 500 {
				t.Errorf("BatchSize = %d", p.BatchSize)
			}
			if err := r.Validate(p); err != nil {
				t.Errorf("preset fails validation: %v", err)
			}
		})
	}

	if got := len(r.Presets()); got != 4 {
		t.Errorf("Presets() returned %d profiles", got)
	}
	if r.Presets()[0].Name != ProfileDefault {
		t.Error("Presets() is not sorted by name")
	}
}

func TestProfileResolver_ExplicitNameSkipsDetection(t *testing.T) {
	r := NewProfileResolver(500, 20)

	p, err := r.Resolve(ProfileInternational, []byte("a;b\n1;2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Delimiter != ',' {
		t.Errorf("explicit profile delimiter changed to %q", p.Delimiter)
	}
}

func TestProfileResolver_UnknownName(t *testing.T) {
	_, err := NewProfileResolver(500, 20).Resolve("german", nil)
	if !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("got %v, want ErrUnknownProfile", err)
	}
}

func TestProfileResolver_Validate(t *testing.T) {
	r := NewProfileResolver(500, 20)
	base, _ := r.Lookup(ProfilePolish)

	tests := []struct {
		name   string
		modify func(*ImportProfile)
	}{
		{"bad delimiter", func(p *ImportProfile) { p.Delimiter = ':' }},
		{"bad decimal", func(p *ImportProfile) { p.DecimalSeparator = ';' }},
		{"bad encoding", func(p *ImportProfile) { p.Encoding = "KOI8-R" }},
		{"single quote", func(p *ImportProfile) { p.QuoteChar = '\'' }},
		{"backslash escape", func(p *ImportProfile) { p.EscapeChar = '\\' }},
		{"zero batch", func(p *ImportProfile) { p.BatchSize = 0 }},
		{"no name", func(p *ImportProfile) { p.Name = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.modify(&p)
			if err := r.Validate(p); !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("got %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		sample  string
		want    rune
		wantErr bool
	}{
		{"semicolon", "a;b;c\n1;2;3\n", ';', false},
		{"comma", "a,b,c\n1,2,3\n", ',', false},
		{"tab", "a\tb\n1\t2\n", '\t', false},
		{"pipe", "a|b\n1|2\n", '|', false},
		{"comma decimals inside semicolon file", "a;b\n1,5;2,5\n", ';', false},
		{"higher count wins", "a;b,c,d\n1;2,3,4\n", ',', false},
		{"tie goes to semicolon", "a;b,c\n1;2,3\n", ';', false},
		{"quoted delimiters ignored", "name,note\n\"Kowalski; Jan\",x\n", ',', false},
		{"quoted newline", "a;b\n\"multi\nline\";2\n", ';', false},
		{"CRLF", "a;b\r\n1;2\r\n", ';', false},
		{"blank lines ignored", "a;b\n\n1;2\n", ';', false},
		{"inconsistent", "a;b\n1;2;3\n", 0, true},
		{"single column", "name\nA\n", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectDelimiter([]byte(tt.sample), 20)
			if tt.wantErr {
				if !errors.Is(err, ErrAmbiguousDelimiter) {
					t.Fatalf("got %q, %v; want ErrAmbiguousDelimiter", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectDelimiter_SampleLimit(t *testing.T) {
	// the broken third record lies beyond the sample
	sample := "a;b\n1;2\n1;2;3\n"
	got, err := DetectDelimiter([]byte(sample), 2)
	if err != nil || got != ';' {
		t.Errorf("got %q, %v", got, err)
	}
}
