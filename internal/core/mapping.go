package core

import (
	"fmt"
	"sort"
	"strings"
)

// MatchKind records how a header was bound to a field.
type MatchKind string

const (
	MatchOverride MatchKind = "override"
	MatchExact    MatchKind = "exact"
	MatchAlias    MatchKind = "alias"
)

// ColumnBinding binds one source column to one entity field.
type ColumnBinding struct {
	Index  int       `json:"index"`
	Header string    `json:"header"`
	Field  string    `json:"field"`
	Match  MatchKind `json:"match"`
}

// ColumnMapping is the resolved header-to-field mapping, in source column order.
type ColumnMapping struct {
	Bindings []ColumnBinding `json:"bindings"`
	Unmapped []string        `json:"unmapped"`
}

// Apply extracts the bound cells of row keyed by field name. Columns missing
// from a short row come back empty.
func (m ColumnMapping) Apply(row []string) map[string]string {
	out := make(map[string]string, len(m.Bindings))
	for _, b := range m.Bindings {
		if b.Index < len(row) {
			out[b.Field] = row[b.Index]
		} else {
			out[b.Field] = ""
		}
	}
	return out
}

// MappingService binds file headers to entity fields. Matching is exact
// (case-insensitive, trimmed) first and then through explicit alias tables.
// It never guesses by similarity.
type MappingService struct {
	aliases AliasTable
}

// NewMappingService returns a service consulting aliases after each
// entity's own field aliases.
func NewMappingService(aliases AliasTable) *MappingService {
	if aliases == nil {
		aliases = AliasTable{}
	}
	return &MappingService{aliases: aliases.Merge(nil)}
}

// ParseAliasPairs builds an alias table from "alias=field" entries.
func ParseAliasPairs(pairs []string) (AliasTable, error) {
	t := make(AliasTable, len(pairs))
	for _, p := range pairs {
		alias, field, ok := strings.Cut(p, "=")
		alias, field = strings.TrimSpace(alias), strings.TrimSpace(field)
		if !ok || alias == "" || field == "" {
			return nil, fmt.Errorf("invalid alias entry %q", p)
		}
		t[normalizeHeader(alias)] = field
	}
	return t, nil
}

// Resolve maps headers onto fields.
func (s *MappingService) Resolve(headers []string, fields []FieldSpec) (ColumnMapping, error) {
	return s.ResolveWithOverrides(headers, fields, nil)
}

// ResolveWithOverrides maps headers onto fields, applying caller-confirmed
// header -> field choices before automatic matching.
//
// Each header binds to at most one field and each field to at most one
// header. Overrides bind first, then the leftmost matching header wins.
// Every required field left unbound is reported in a single
// *MissingColumnsError. An override naming a field the entity does not have
// fails with ErrUnknownOverrideField.
func (s *MappingService) ResolveWithOverrides(headers []string, fields []FieldSpec, overrides map[string]string) (ColumnMapping, error) {
	known := make(map[string]string, len(fields))
	for _, f := range fields {
		known[normalizeHeader(f.Name)] = f.Name
	}
	fieldAliases := fieldAliasTable(fields)

	normOverrides := make(map[string]string, len(overrides))
	var unknown []string
	for h, f := range overrides {
		canonical, ok := known[normalizeHeader(f)]
		if !ok {
			unknown = append(unknown, f)
			continue
		}
		normOverrides[normalizeHeader(h)] = canonical
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return ColumnMapping{}, fmt.Errorf("%w: %s", ErrUnknownOverrideField, strings.Join(unknown, ", "))
	}

	bound := make(map[string]bool, len(fields))
	byIndex := make(map[int]ColumnBinding, len(headers))
	norm := make([]string, len(headers))
	for i, raw := range headers {
		norm[i] = normalizeHeader(stripHeaderNoise(raw))
	}

	// confirmed choices bind first so they beat automatic matches elsewhere
	for i, h := range norm {
		if f, ok := normOverrides[h]; ok && h != "" && !bound[f] {
			bound[f] = true
			byIndex[i] = ColumnBinding{Index: i, Header: headers[i], Field: f, Match: MatchOverride}
		}
	}

	var m ColumnMapping
	for i, raw := range headers {
		if b, ok := byIndex[i]; ok {
			m.Bindings = append(m.Bindings, b)
			continue
		}
		field, kind := s.match(norm[i], known, fieldAliases)
		if field == "" || bound[field] {
			if strings.TrimSpace(raw) != "" {
				m.Unmapped = append(m.Unmapped, raw)
			}
			continue
		}
		bound[field] = true
		m.Bindings = append(m.Bindings, ColumnBinding{Index: i, Header: raw, Field: field, Match: kind})
	}

	var missing []string
	for _, f := range fields {
		if f.Required && !bound[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return ColumnMapping{}, &MissingColumnsError{Fields: missing}
	}
	return m, nil
}

func (s *MappingService) match(h string, known map[string]string, fieldAliases AliasTable) (string, MatchKind) {
	if h == "" {
		return "", ""
	}
	if f, ok := known[h]; ok {
		return f, MatchExact
	}
	if f, ok := fieldAliases[h]; ok {
		return f, MatchAlias
	}
	if f, ok := s.aliases[h]; ok {
		if _, isField := known[normalizeHeader(f)]; isField {
			return known[normalizeHeader(f)], MatchAlias
		}
	}
	return "", ""
}

// stripHeaderNoise removes a stray BOM and Excel quoting from a header cell.
func stripHeaderNoise(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return CleanCell(h)
}

// fieldAliasTable collects the per-field aliases of fields.
func fieldAliasTable(fields []FieldSpec) AliasTable {
	t := make(AliasTable)
	for _, f := range fields {
		for _, a := range f.Aliases {
			t[normalizeHeader(a)] = f.Name
		}
	}
	return t
}
