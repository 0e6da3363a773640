package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// flatsEntity is a small entity used across the pipeline tests.
var flatsEntity = EntityDefinition{
	Info: EntityInfo{Key: "test_flats", Label: "Lokale", Group: "Test", Table: "test_flats"},
	Fields: []FieldSpec{
		{Name: "name", Type: FieldText, Required: true, Aliases: []string{"Nazwa"}},
		{Name: "area", Type: FieldNumeric, Required: true, Aliases: []string{"Powierzchnia"}, Example: "45.50"},
		{Name: "floor", Type: FieldInteger},
		{Name: "rented", Type: FieldBool},
	},
}

func init() {
	Register(flatsEntity)
}

// memWriter records committed batches and can reject chosen ones.
type memWriter struct {
	mu      sync.Mutex
	batches [][]Record
	calls   int
	// fail returns a non-nil error to reject the batch.
	fail func(call int, rows []Record) error
	// deleted counts rows removed by DeleteByImport per import id.
	deleted map[string]int64
}

func (w *memWriter) WriteBatch(ctx context.Context, def EntityDefinition, importID string, rows []Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.fail != nil {
		if err := w.fail(w.calls, rows); err != nil {
			return err
		}
	}
	batch := make([]Record, len(rows))
	copy(batch, rows)
	w.batches = append(w.batches, batch)
	return nil
}

func (w *memWriter) DeleteByImport(ctx context.Context, def EntityDefinition, importID string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var n int64
	for _, b := range w.batches {
		n += int64(len(b))
	}
	w.batches = nil
	if w.deleted == nil {
		w.deleted = make(map[string]int64)
	}
	w.deleted[importID] = n
	return n, nil
}

func (w *memWriter) committed() []Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Record
	for _, b := range w.batches {
		out = append(out, b...)
	}
	return out
}

// memRuns is an in-memory RunStore.
type memRuns struct {
	mu       sync.Mutex
	runs     map[string]Run
	failures map[string][]RowFailure
	// saveErr makes SaveRun fail.
	saveErr error
}

func newMemRuns() *memRuns {
	return &memRuns{runs: make(map[string]Run), failures: make(map[string][]RowFailure)}
}

func (m *memRuns) SaveRun(ctx context.Context, run Run, failures []RowFailure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.runs[run.ID] = run
	m.failures[run.ID] = failures
	return nil
}

func (m *memRuns) ChecksumImported(ctx context.Context, entity, checksum string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.Entity == entity && r.Checksum == checksum && r.Imported > 0 && r.RolledBackAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRuns) ListRuns(ctx context.Context, entity string, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Run
	for _, r := range m.runs {
		if r.Entity == entity {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRuns) GetRun(ctx context.Context, id string) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return r, nil
}

func (m *memRuns) MarkRolledBack(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok || r.RolledBackAt != nil {
		return ErrRunNotFound
	}
	r.RolledBackAt = &at
	m.runs[id] = r
	return nil
}

func (m *memRuns) PurgeRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.runs {
		if r.CreatedAt.Before(olderThan) {
			delete(m.runs, id)
			n++
		}
	}
	return n, nil
}

var errConstraint = errors.New("violates check constraint")
