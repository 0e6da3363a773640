package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// TemplateGenerator builds downloadable example files. Output depends only
// on the entity and the clock's date.
type TemplateGenerator struct {
	now     func() time.Time
	profile ImportProfile
}

// NewTemplateGenerator returns a generator formatting values with the
// polish profile. A nil clock means time.Now.
func NewTemplateGenerator(now func() time.Time) *TemplateGenerator {
	if now == nil {
		now = time.Now
	}
	return &TemplateGenerator{
		now:     now,
		profile: presetProfiles(1)[ProfilePolish],
	}
}

// TemplateFileName returns template_<entity>_<YYYY-MM-DD>.<ext>.
func TemplateFileName(entity string, day time.Time, ext string) string {
	return fmt.Sprintf("template_%s_%s.%s", entity, day.Format("2006-01-02"), ext)
}

// Rows returns the header row and the single example row.
func (g *TemplateGenerator) Rows(def EntityDefinition) ([]string, []string) {
	header := def.FieldNames()
	example := make([]string, len(def.Fields))
	for i, f := range def.Fields {
		example[i] = g.exampleValue(f)
	}
	return header, example
}

// Generate renders the CSV template: header, one example row, ';' delimited.
func (g *TemplateGenerator) Generate(def EntityDefinition) ([]byte, string, error) {
	header, example := g.Rows(def)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = g.profile.Delimiter
	if err := w.WriteAll([][]string{header, example}); err != nil {
		return nil, "", fmt.Errorf("write template: %w", err)
	}

	return buf.Bytes(), TemplateFileName(def.Info.Key, g.now(), "csv"), nil
}

// GenerateXLSX renders the same rows as a single-sheet workbook.
func (g *TemplateGenerator) GenerateXLSX(def EntityDefinition) ([]byte, string, error) {
	header, example := g.Rows(def)

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(def.Info.Key)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("name sheet: %w", err)
	}

	for rowIdx, cells := range [][]string{header, example} {
		row := make([]interface{}, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write row %d: %w", rowIdx+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, "", err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return nil, "", fmt.Errorf("apply header style: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), TemplateFileName(def.Info.Key, g.now(), "xlsx"), nil
}

// exampleValue formats the field's example in the template dialect.
func (g *TemplateGenerator) exampleValue(f FieldSpec) string {
	switch f.Type {
	case FieldNumeric:
		d, err := decimal.NewFromString(defaultIfEmpty(f.Example, "123.45"))
		if err != nil {
			d = decimal.RequireFromString("123.45")
		}
		return FormatDecimal(d, g.profile.DecimalSeparator)
	case FieldInteger:
		return defaultIfEmpty(f.Example, "1")
	case FieldBool:
		if b, ok := ParseBool(f.Example); ok {
			return FormatBool(b)
		}
		return FormatBool(true)
	case FieldDate:
		if t, ok := ParseDate(f.Example); ok {
			return t.Format("2006-01-02")
		}
		return "2024-01-31"
	case FieldEnum:
		if f.Example != "" {
			return f.Example
		}
		if len(f.EnumValues) > 0 {
			return f.EnumValues[0]
		}
		return ""
	default:
		return defaultIfEmpty(f.Example, "przykład")
	}
}

// sheetName trims a key to Excel's 31 character sheet name limit.
func sheetName(key string) string {
	if len(key) > 31 {
		return key[:31]
	}
	return key
}
