package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping_ExactAndAlias(t *testing.T) {
	m, err := NewMappingService(nil).Resolve([]string{" NAME ", "Powierzchnia"}, flatsEntity.Fields)
	require.NoError(t, err)

	require.Len(t, m.Bindings, 2)
	assert.Equal(t, ColumnBinding{Index: 0, Header: " NAME ", Field: "name", Match: MatchExact}, m.Bindings[0])
	assert.Equal(t, ColumnBinding{Index: 1, Header: "Powierzchnia", Field: "area", Match: MatchAlias}, m.Bindings[1])
	assert.Empty(t, m.Unmapped)
}

func TestMapping_GlobalAliases(t *testing.T) {
	aliases, err := ParseAliasPairs([]string{"Lokal=name", " metraż = area"})
	require.NoError(t, err)

	m, err := NewMappingService(aliases).Resolve([]string{"lokal", "Metraż"}, flatsEntity.Fields)
	require.NoError(t, err)

	assert.Equal(t, 1, boundIndex(m, "area"))
}

func TestMapping_GlobalAliasToUnknownFieldIgnored(t *testing.T) {
	aliases := AliasTable{"kolor": "color"}
	m, err := NewMappingService(aliases).Resolve([]string{"name", "area", "kolor"}, flatsEntity.Fields)
	require.NoError(t, err)
	assert.Equal(t, []string{"kolor"}, m.Unmapped)
}

func TestMapping_NoFuzzyMatching(t *testing.T) {
	_, err := NewMappingService(nil).Resolve([]string{"name", "areaa"}, flatsEntity.Fields)
	var mc *MissingColumnsError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, []string{"area"}, mc.Fields)
}

func TestMapping_FirstHeaderWins(t *testing.T) {
	m, err := NewMappingService(nil).Resolve([]string{"name", "area", "Nazwa"}, flatsEntity.Fields)
	require.NoError(t, err)

	assert.Equal(t, 0, boundIndex(m, "name"))
	assert.Equal(t, []string{"Nazwa"}, m.Unmapped)
}

func TestMapping_OverridesTakePrecedence(t *testing.T) {
	m, err := NewMappingService(nil).ResolveWithOverrides(
		[]string{"name", "opis", "area"},
		flatsEntity.Fields,
		map[string]string{"opis": "name", "bogus": "AREA"},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, boundIndex(m, "name"), "override beats the exact header")
	assert.Equal(t, 2, boundIndex(m, "area"), "override for an absent header changes nothing")
	assert.Equal(t, MatchOverride, m.Bindings[0].Match)
	assert.Equal(t, []string{"name"}, m.Unmapped)
}

func TestMapping_StripsBOMAndExcelGuard(t *testing.T) {
	m, err := NewMappingService(nil).Resolve([]string{"\ufeffname", `="area"`}, flatsEntity.Fields)
	require.NoError(t, err)
	assert.Len(t, m.Bindings, 2)
}

func TestMapping_Apply(t *testing.T) {
	m, err := NewMappingService(nil).Resolve([]string{"extra", "area", "name"}, flatsEntity.Fields)
	require.NoError(t, err)

	cells := m.Apply([]string{"x", "12,5"})
	assert.Equal(t, "12,5", cells["area"])
	assert.Equal(t, "", cells["name"], "short row yields empty cell")
}

func TestParseAliasPairs_Invalid(t *testing.T) {
	for _, in := range []string{"noequals", "=area", "alias="} {
		_, err := ParseAliasPairs([]string{in})
		assert.Error(t, err, in)
	}
}

func TestMapping_OverrideToUnknownFieldRejected(t *testing.T) {
	_, err := NewMappingService(nil).ResolveWithOverrides(
		[]string{"lokal", "area"},
		flatsEntity.Fields,
		map[string]string{"lokal": "nmae", "x": "colour"},
	)
	require.ErrorIs(t, err, ErrUnknownOverrideField)
	assert.Contains(t, err.Error(), "colour, nmae")
	assert.NotErrorIs(t, err, ErrMissingRequiredColumn)
}

func TestFieldAliasTable(t *testing.T) {
	table := fieldAliasTable(flatsEntity.Fields)
	assert.Equal(t, "area", table["powierzchnia"])
	assert.Equal(t, "name", table["nazwa"])
}

// boundIndex returns the source column bound to field, or -1.
func boundIndex(m ColumnMapping, field string) int {
	for _, b := range m.Bindings {
		if b.Field == field {
			return b.Index
		}
	}
	return -1
}
