package core

// validation.go converts and validates one mapped row.
//
// Numeric conversion runs over every field first, then type and required
// checks. A row with any numeric problem is reported as InvalidNumericFormat,
// otherwise as ValidationError; all problems of the row are kept either way.

import (
	"errors"
	"fmt"
	"strings"
)

// RowValidator turns a raw CSV row into a Record.
type RowValidator struct {
	fields  []FieldSpec
	mapping ColumnMapping
	conv    DecimalConverter
	sep     rune
	trim    bool
}

// NewRowValidator creates a validator for fields read through mapping with
// the dialect of profile.
func NewRowValidator(fields []FieldSpec, mapping ColumnMapping, profile ImportProfile) *RowValidator {
	return &RowValidator{
		fields:  fields,
		mapping: mapping,
		conv:    NewDecimalConverter(profile.TrimWhitespace),
		sep:     profile.DecimalSeparator,
		trim:    profile.TrimWhitespace,
	}
}

// Build converts row (data row number line). It returns either a record or
// the row failure, never both.
func (v *RowValidator) Build(line int, row []string) (Record, *RowFailure) {
	cells := v.mapping.Apply(row)
	values := make(map[string]any, len(v.fields))
	raw := make(map[string]string, len(v.fields))

	var numericErrs, validationErrs []FieldError

	for _, f := range v.fields {
		s := cells[f.Name]
		if v.trim {
			s = CleanCell(s)
		}
		if f.Normalizer != nil && s != "" {
			s = f.Normalizer(s)
		}
		raw[f.Name] = s

		if f.Type != FieldNumeric || s == "" {
			continue
		}
		d, err := v.conv.Convert(s, v.sep)
		if err != nil {
			numericErrs = append(numericErrs, FieldError{
				Field: f.Name, Value: s, Kind: KindInvalidNumeric, Message: numericMessage(err),
			})
			continue
		}
		values[f.Name] = d
	}

	for _, f := range v.fields {
		s := raw[f.Name]
		if s == "" {
			if f.Required {
				validationErrs = append(validationErrs, FieldError{
					Field: f.Name, Kind: KindValidation, Message: "required field is empty",
				})
			}
			values[f.Name] = nil
			continue
		}
		if f.Type == FieldNumeric {
			continue
		}

		val, msg := convertCell(s, f)
		if msg != "" {
			validationErrs = append(validationErrs, FieldError{
				Field: f.Name, Value: s, Kind: KindValidation, Message: msg,
			})
			continue
		}
		values[f.Name] = val
	}

	if len(numericErrs) == 0 && len(validationErrs) == 0 {
		return Record{Line: line, Values: values}, nil
	}

	all := append(numericErrs, validationErrs...)
	kind := KindValidation
	if len(numericErrs) > 0 {
		kind = KindInvalidNumeric
	}
	return Record{}, &RowFailure{
		Line:   line,
		Kind:   kind,
		Reason: joinFieldErrors(all),
		Fields: all,
		Data:   row,
	}
}

// convertCell converts a non-empty, non-numeric cell. A non-empty message
// means the value is invalid.
func convertCell(s string, f FieldSpec) (any, string) {
	switch f.Type {
	case FieldInteger:
		n, ok := ParseInteger(s)
		if !ok {
			return nil, "must be a whole number"
		}
		return n, ""
	case FieldDate:
		t, ok := ParseDate(s)
		if !ok {
			return nil, "invalid date (use YYYY-MM-DD or DD.MM.YYYY)"
		}
		return t, ""
	case FieldBool:
		b, ok := ParseBool(s)
		if !ok {
			return nil, "must be tak/nie"
		}
		return b, ""
	case FieldEnum:
		for _, ev := range f.EnumValues {
			if strings.EqualFold(ev, s) {
				return ev, ""
			}
		}
		return nil, fmt.Sprintf("must be one of: %s", strings.Join(f.EnumValues, ", "))
	default:
		return s, ""
	}
}

func numericMessage(err error) string {
	var nf *NumericFormatError
	if errors.As(err, &nf) {
		return "invalid number: " + nf.Reason
	}
	return err.Error()
}

func joinFieldErrors(errs []FieldError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
