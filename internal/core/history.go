package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrRunNotFound is returned for an unknown import id.
var ErrRunNotFound = errors.New("import run not found")

// Run is the stored summary of one import.
type Run struct {
	ID           string     `json:"id"`
	Entity       string     `json:"entity"`
	FileName     string     `json:"fileName"`
	Checksum     string     `json:"checksum"`
	Profile      string     `json:"profile"`
	State        State      `json:"state"`
	TotalRows    int        `json:"totalRows"`
	Imported     int        `json:"imported"`
	Skipped      int        `json:"skipped"`
	Failed       int        `json:"failed"`
	Unprocessed  int        `json:"unprocessed"`
	Batches      int        `json:"batches"`
	DurationMs   int64      `json:"durationMs"`
	CreatedBy    string     `json:"createdBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	RolledBackAt *time.Time `json:"rolledBackAt,omitempty"`
}

// RunFromResult builds the history record of res.
func RunFromResult(res *Result, checksum, createdBy string, at time.Time) Run {
	return Run{
		ID:          res.ImportID,
		Entity:      res.Entity,
		FileName:    res.FileName,
		Checksum:    checksum,
		Profile:     res.Profile,
		State:       res.State,
		TotalRows:   res.TotalRows,
		Imported:    res.Imported,
		Skipped:     res.Skipped,
		Failed:      res.Failed,
		Unprocessed: res.Unprocessed,
		Batches:     res.Batches,
		DurationMs:  res.Duration.Milliseconds(),
		CreatedBy:   createdBy,
		CreatedAt:   at,
	}
}

// RunStore persists import history.
type RunStore interface {
	SaveRun(ctx context.Context, run Run, failures []RowFailure) error
	// ChecksumImported reports whether a file with this checksum already
	// imported rows into entity and was not rolled back.
	ChecksumImported(ctx context.Context, entity, checksum string) (bool, error)
	ListRuns(ctx context.Context, entity string, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	MarkRolledBack(ctx context.Context, id string, at time.Time) error
	PurgeRuns(ctx context.Context, olderThan time.Time) (int64, error)
}

// PgRunStore keeps history in import_runs and import_failures.
type PgRunStore struct {
	pool Pool
}

// NewPgRunStore returns a run store using pool.
func NewPgRunStore(pool Pool) *PgRunStore {
	return &PgRunStore{pool: pool}
}

const runColumns = `id, entity, file_name, checksum, profile, state, total_rows, imported,
	skipped, failed, unprocessed, batches, duration_ms, created_by, created_at, rolled_back_at`

func (s *PgRunStore) SaveRun(ctx context.Context, run Run, failures []RowFailure) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	id := ToPgUUID(run.ID)
	_, err = tx.Exec(ctx, `INSERT INTO import_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULL)`,
		id, run.Entity, run.FileName, run.Checksum, run.Profile, string(run.State),
		run.TotalRows, run.Imported, run.Skipped, run.Failed, run.Unprocessed, run.Batches,
		run.DurationMs, ToPgText(run.CreatedBy), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(failures) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"import_failures"},
			[]string{"import_id", "line_number", "source_line", "kind", "reason", "row_data"},
			pgx.CopyFromSlice(len(failures), func(i int) ([]any, error) {
				f := failures[i]
				return []any{id, f.Line, f.SourceLine, string(f.Kind), f.Reason, f.Data}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy failures: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func (s *PgRunStore) ChecksumImported(ctx context.Context, entity, checksum string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM import_runs
		WHERE entity = $1 AND checksum = $2 AND imported > 0 AND rolled_back_at IS NULL
	)`, entity, checksum).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check checksum: %w", err)
	}
	return exists, nil
}

func (s *PgRunStore) ListRuns(ctx context.Context, entity string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `SELECT `+runColumns+` FROM import_runs
		WHERE entity = $1 ORDER BY created_at DESC LIMIT $2`, entity, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PgRunStore) GetRun(ctx context.Context, id string) (Run, error) {
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return Run{}, ErrRunNotFound
	}
	run, err := scanRun(s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM import_runs WHERE id = $1`, pgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

func (s *PgRunStore) MarkRolledBack(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE import_runs SET rolled_back_at = $2 WHERE id = $1 AND rolled_back_at IS NULL`,
		ToPgUUID(id), at)
	if err != nil {
		return fmt.Errorf("mark rolled back: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *PgRunStore) PurgeRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM import_runs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRun(row pgx.Row) (Run, error) {
	var (
		run        Run
		id         pgtype.UUID
		state      string
		createdBy  pgtype.Text
		rolledBack pgtype.Timestamptz
	)
	err := row.Scan(&id, &run.Entity, &run.FileName, &run.Checksum, &run.Profile, &state,
		&run.TotalRows, &run.Imported, &run.Skipped, &run.Failed, &run.Unprocessed, &run.Batches,
		&run.DurationMs, &createdBy, &run.CreatedAt, &rolledBack)
	if err != nil {
		return Run{}, err
	}
	run.ID = PgUUIDToString(id)
	run.State = State(state)
	run.CreatedBy = createdBy.String
	if rolledBack.Valid {
		t := rolledBack.Time
		run.RolledBackAt = &t
	}
	return run, nil
}
