// Package core implements the CSV import pipeline for community records.
//
// The package has no HTTP dependencies. Handlers, tests and command line
// tools drive it through [Service] or, for finer control, through the
// individual pieces:
//
//   - [ProfileResolver] picks the CSV dialect (delimiter, decimal separator,
//     encoding) from a named preset or detects the delimiter from a sample.
//   - [DecimalConverter] turns locale-formatted numbers into exact decimals.
//   - [MappingService] binds file headers to entity fields using exact names
//     and explicit alias tables.
//   - [TemplateGenerator] produces a downloadable example file per entity.
//   - [Manager] runs one import: decode, map, validate, commit in batches.
//
// # Entities
//
// Import targets are registered at init time (see package entities):
//
//	core.Register(core.EntityDefinition{
//	    Info: core.EntityInfo{Key: "apartments", Label: "Lokale", Table: "apartments"},
//	    Fields: []core.FieldSpec{
//	        {Name: "number", Type: core.FieldText, Required: true, Aliases: []string{"numer lokalu"}},
//	        {Name: "area", Type: core.FieldNumeric, Required: true, Aliases: []string{"powierzchnia"}},
//	    },
//	})
//
// # Failures
//
// Problems that make the whole file unusable (unknown profile, ambiguous
// delimiter, bad encoding, missing required columns) are returned as errors
// and nothing is written. Problems confined to a row or a batch are collected
// in [Result.Failures] and the import carries on.
package core
