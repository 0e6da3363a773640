package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Preset profile names.
const (
	ProfileDefault       = "default"
	ProfilePolish        = "polish"
	ProfileInternational = "international"
	ProfileExcel         = "excel"
)

// ImportProfile is a CSV dialect.
type ImportProfile struct {
	Name                string   `json:"name" validate:"required"`
	Delimiter           rune     `json:"-" validate:"delimiter"`
	DecimalSeparator    rune     `json:"-" validate:"decimalsep"`
	Encoding            Encoding `json:"encoding" validate:"charset"`
	QuoteChar           rune     `json:"-" validate:"eq=34"`
	EscapeChar          rune     `json:"-" validate:"eq=34"`
	SkipHeader          bool     `json:"skipHeader"`
	TrimWhitespace      bool     `json:"trimWhitespace"`
	SkipEmptyRows       bool     `json:"skipEmptyRows"`
	BatchSize           int      `json:"batchSize" validate:"gt=0"`
	AutoDetectDelimiter bool     `json:"autoDetectDelimiter"`
}

// DelimiterName returns a printable form of the delimiter.
func (p ImportProfile) DelimiterName() string {
	if p.Delimiter == '\t' {
		return "tab"
	}
	return string(p.Delimiter)
}

// delimiterPreference lists the supported delimiters, most preferred first.
var delimiterPreference = []rune{';', ',', '\t', '|'}

func presetProfiles(batchSize int) map[string]ImportProfile {
	base := ImportProfile{
		QuoteChar:      '"',
		EscapeChar:     '"',
		SkipHeader:     true,
		TrimWhitespace: true,
		SkipEmptyRows:  true,
		BatchSize:      batchSize,
	}

	def := base
	def.Name = ProfileDefault
	def.Delimiter = ','
	def.DecimalSeparator = '.'
	def.Encoding = EncodingAuto
	def.AutoDetectDelimiter = true

	polish := base
	polish.Name = ProfilePolish
	polish.Delimiter = ';'
	polish.DecimalSeparator = ','
	polish.Encoding = EncodingUTF8

	intl := base
	intl.Name = ProfileInternational
	intl.Delimiter = ','
	intl.DecimalSeparator = '.'
	intl.Encoding = EncodingUTF8

	excel := base
	excel.Name = ProfileExcel
	excel.Delimiter = ';'
	excel.DecimalSeparator = ','
	excel.Encoding = EncodingWindows1250

	return map[string]ImportProfile{
		def.Name:    def,
		polish.Name: polish,
		intl.Name:   intl,
		excel.Name:  excel,
	}
}

// ProfileResolver resolves named presets and detects delimiters.
type ProfileResolver struct {
	presets       map[string]ImportProfile
	sampleRecords int
	validate      *validator.Validate
}

// NewProfileResolver builds the preset table. batchSize applies to every
// preset; sampleRecords bounds delimiter detection.
func NewProfileResolver(batchSize, sampleRecords int) *ProfileResolver {
	if sampleRecords <= 0 {
		sampleRecords = 20
	}
	r := &ProfileResolver{
		presets:       presetProfiles(batchSize),
		sampleRecords: sampleRecords,
		validate:      newProfileValidator(),
	}
	return r
}

// Lookup returns the preset with exactly this name.
func (r *ProfileResolver) Lookup(name string) (ImportProfile, error) {
	p, ok := r.presets[name]
	if !ok {
		return ImportProfile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Presets returns the presets sorted by name.
func (r *ProfileResolver) Presets() []ImportProfile {
	out := make([]ImportProfile, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve returns the profile for an import. An explicit name selects that
// preset as is. Without a name the default preset is used and, when it asks
// for it, the delimiter is detected from sample. sample must already be
// decoded text.
func (r *ProfileResolver) Resolve(name string, sample []byte) (ImportProfile, error) {
	explicit := name != ""
	if !explicit {
		name = ProfileDefault
	}

	p, err := r.Lookup(name)
	if err != nil {
		return ImportProfile{}, err
	}

	if !explicit && p.AutoDetectDelimiter {
		d, err := DetectDelimiter(sample, r.sampleRecords)
		if err != nil {
			return ImportProfile{}, err
		}
		p.Delimiter = d
		if d == ';' {
			// semicolon files come from locales that write decimal commas
			p.DecimalSeparator = ','
		}
	}

	if err := r.Validate(p); err != nil {
		return ImportProfile{}, err
	}
	return p, nil
}

// Validate checks the profile invariants.
func (r *ProfileResolver) Validate(p ImportProfile) error {
	err := r.validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(msgs, "; "))
}

func newProfileValidator() *validator.Validate {
	v := validator.New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		r := rune(fl.Field().Int())
		for _, d := range delimiterPreference {
			if r == d {
				return true
			}
		}
		return false
	}))
	must(v.RegisterValidation("decimalsep", func(fl validator.FieldLevel) bool {
		r := rune(fl.Field().Int())
		return r == '.' || r == ','
	}))
	must(v.RegisterValidation("charset", func(fl validator.FieldLevel) bool {
		return Encoding(fl.Field().String()).Supported()
	}))
	return v
}

// DetectDelimiter picks the delimiter from up to maxRecords records of sample.
//
// Each candidate is counted outside quoted spans. A candidate is consistent
// when every sampled non-empty record contains it the same, non-zero number
// of times. The consistent candidate with the highest count wins; ties go to
// the earlier entry of ; , tab |.
func DetectDelimiter(sample []byte, maxRecords int) (rune, error) {
	records := splitRecords(string(sample), maxRecords)
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: no data to sample", ErrAmbiguousDelimiter)
	}

	best, bestCount := rune(0), 0
	for _, cand := range delimiterPreference {
		count, ok := consistentCount(records, cand)
		if !ok {
			continue
		}
		if count > bestCount {
			best, bestCount = cand, count
		}
	}

	if bestCount == 0 {
		return 0, fmt.Errorf("%w: no candidate appears consistently", ErrAmbiguousDelimiter)
	}
	return best, nil
}

func consistentCount(records []string, cand rune) (int, bool) {
	want := -1
	for _, rec := range records {
		n := countOutsideQuotes(rec, cand)
		if n == 0 {
			return 0, false
		}
		if want == -1 {
			want = n
		} else if n != want {
			return 0, false
		}
	}
	return want, true
}

func countOutsideQuotes(rec string, cand rune) int {
	n := 0
	inQuotes := false
	for _, r := range rec {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == cand && !inQuotes:
			n++
		}
	}
	return n
}

// splitRecords splits text into at most max non-blank records. Newlines
// inside quoted fields do not end a record.
func splitRecords(text string, max int) []string {
	var (
		out      []string
		start    int
		inQuotes bool
	)
	emit := func(end int) {
		rec := strings.TrimRight(text[start:end], "\r")
		if strings.TrimSpace(rec) != "" {
			out = append(out, rec)
		}
	}

	for i := 0; i < len(text) && len(out) < max; i++ {
		switch text[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				emit(i)
				start = i + 1
			}
		}
	}
	if len(out) < max && start < len(text) {
		emit(len(text))
	}
	return out
}
