package core

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Pool is a DBTX that can also open transactions.
type Pool interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// FieldType is the expected type of an imported value.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
	FieldInteger
	FieldBool
)

func (t FieldType) String() string {
	switch t {
	case FieldEnum:
		return "enum"
	case FieldDate:
		return "date"
	case FieldNumeric:
		return "numeric"
	case FieldInteger:
		return "integer"
	case FieldBool:
		return "bool"
	default:
		return "text"
	}
}

// FieldSpec describes one target field of an entity.
type FieldSpec struct {
	Name       string              // canonical field name, also the template header
	Column     string              // database column, defaults to Name
	Type       FieldType
	Required   bool                // column must be present and the value non-empty
	EnumValues []string            // accepted values for FieldEnum, compared case-insensitively
	Aliases    []string            // alternative header names accepted for this field
	Example    string              // template example value, in canonical (dot decimal) form
	Normalizer func(string) string // applied to the raw cell before conversion
}

// DBColumn returns the database column the field is stored in.
func (f FieldSpec) DBColumn() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// EntityInfo holds display and storage information for an import target.
type EntityInfo struct {
	Key   string // unique identifier used in URLs: "apartments"
	Label string // display name: "Lokale"
	Group string // menu group: "Nieruchomości", "Finanse"
	Table string // destination table
}

// EntityDefinition is everything the pipeline needs to import one entity.
type EntityDefinition struct {
	Info   EntityInfo
	Fields []FieldSpec
}

// Field returns the spec for a field name.
func (d EntityDefinition) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FieldNames returns the field names in declared order.
func (d EntityDefinition) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// Columns returns the destination columns in declared order.
func (d EntityDefinition) Columns() []string {
	cols := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		cols[i] = f.DBColumn()
	}
	return cols
}

// AliasTable maps a normalized alternative header to a canonical field name.
type AliasTable map[string]string

// Merge returns a new table with other's entries added; existing entries win.
func (t AliasTable) Merge(other AliasTable) AliasTable {
	out := make(AliasTable, len(t)+len(other))
	for k, v := range other {
		out[normalizeHeader(k)] = v
	}
	for k, v := range t {
		out[normalizeHeader(k)] = v
	}
	return out
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// Record is a converted row ready for storage.
type Record struct {
	Line   int            // 1-based data row number
	Values map[string]any // field name -> string, decimal.Decimal, int64, bool, time.Time or nil
}

// State is the lifecycle of a single import.
type State string

const (
	StateIdle            State = "idle"
	StateProfileResolved State = "profile_resolved"
	StateMappingResolved State = "mapping_resolved"
	StateProcessing      State = "processing"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// FailureKind classifies a row-level failure.
type FailureKind string

const (
	KindInvalidNumeric FailureKind = "InvalidNumericFormat"
	KindValidation     FailureKind = "ValidationError"
	KindBatchCommit    FailureKind = "BatchCommitError"
	KindParse          FailureKind = "ParseError"
)

// RowFailure records why a data row was not imported.
type RowFailure struct {
	Line       int          `json:"line"`       // 1-based data row number
	SourceLine int          `json:"sourceLine"` // physical line in the file
	Kind       FailureKind  `json:"kind"`
	Reason     string       `json:"reason"`
	Fields     []FieldError `json:"fields,omitempty"`
	Data       []string     `json:"data,omitempty"`
}

// Result is the outcome of one import. It is not modified after being returned.
type Result struct {
	ImportID    string        `json:"importId"`
	Entity      string        `json:"entity"`
	FileName    string        `json:"fileName"`
	Profile     string        `json:"profile"`
	State       State         `json:"state"`
	TotalRows   int           `json:"totalRows"`
	Imported    int           `json:"imported"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	Unprocessed int           `json:"unprocessed"`
	Batches     int           `json:"batches"`
	Failures    []RowFailure  `json:"failures"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// Progress is a snapshot published after every batch.
type Progress struct {
	ImportID string
	Entity   string
	State    State
	RowsRead int
	Imported int
	Skipped  int
	Failed   int
	Batches  int
}

// ProgressCallback receives progress snapshots. It runs on the import goroutine.
type ProgressCallback func(Progress)
