package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ImportStore is the storage side of the pipeline.
type ImportStore interface {
	BatchWriter
	// DeleteByImport removes every row an import wrote to def's table.
	DeleteByImport(ctx context.Context, def EntityDefinition, importID string) (int64, error)
}

// PgStore writes batches to PostgreSQL. Each batch runs in its own
// transaction and is loaded with COPY, so a batch is either fully visible
// or absent.
type PgStore struct {
	pool Pool
}

// NewPgStore returns a store using pool.
func NewPgStore(pool Pool) *PgStore {
	return &PgStore{pool: pool}
}

// WriteBatch copies rows into the entity table, tagging each with importID.
func (s *PgStore) WriteBatch(ctx context.Context, def EntityDefinition, importID string, rows []Record) error {
	if len(rows) == 0 {
		return nil
	}
	id := ToPgUUID(importID)
	if !id.Valid {
		return fmt.Errorf("invalid import id %q", importID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	columns := append(def.Columns(), "import_id")
	source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		vals := make([]any, 0, len(columns))
		for _, f := range def.Fields {
			vals = append(vals, toPgValue(rows[i].Values[f.Name]))
		}
		return append(vals, id), nil
	})

	n, err := tx.CopyFrom(ctx, pgx.Identifier{def.Info.Table}, columns, source)
	if err != nil {
		return fmt.Errorf("copy into %s: %w", def.Info.Table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", def.Info.Table, n, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// DeleteByImport deletes the rows tagged with importID.
func (s *PgStore) DeleteByImport(ctx context.Context, def EntityDefinition, importID string) (int64, error) {
	id := ToPgUUID(importID)
	if !id.Valid {
		return 0, fmt.Errorf("invalid import id %q", importID)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE import_id = $1", quoteIdentifier(def.Info.Table))
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete import rows: %w", err)
	}
	return tag.RowsAffected(), nil
}

func quoteIdentifier(name string) string {
	return pgx.Identifier{strings.TrimSpace(name)}.Sanitize()
}
