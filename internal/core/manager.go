package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/JonMunkholm/estateadmin/internal/logging"
)

// contextCheckInterval is how many rows are read between cancellation checks.
const contextCheckInterval = 200

// DefaultMaxFileSize applies when the manager is built without WithMaxFileSize.
const DefaultMaxFileSize = 20 << 20

// BatchWriter stores one batch atomically: either every record of rows is
// committed or none is.
type BatchWriter interface {
	WriteBatch(ctx context.Context, def EntityDefinition, importID string, rows []Record) error
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithMaxFileSize bounds the bytes read from an upload.
func WithMaxFileSize(n int64) ManagerOption {
	return func(m *Manager) { m.maxFileSize = n }
}

// Manager runs imports. It holds no per-import state and is safe for
// concurrent use.
type Manager struct {
	profiles    *ProfileResolver
	mapper      *MappingService
	writer      BatchWriter
	maxFileSize int64
	now         func() time.Time
}

// NewManager wires the pipeline pieces together.
func NewManager(profiles *ProfileResolver, mapper *MappingService, writer BatchWriter, opts ...ManagerOption) *Manager {
	m := &Manager{
		profiles:    profiles,
		mapper:      mapper,
		writer:      writer,
		maxFileSize: DefaultMaxFileSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ImportRequest describes one import.
type ImportRequest struct {
	ImportID   string // generated when empty
	Entity     EntityDefinition
	FileName   string
	Data       io.Reader
	Profile    string            // preset name; empty means default with detection
	Overrides  map[string]string // confirmed header -> field choices
	OnProgress ProgressCallback
}

// Import runs one import to completion.
//
// Fatal problems (profile, encoding, missing columns) return a nil result and
// an error; nothing has been written. Row and batch problems are collected
// in the result. If ctx ends mid-way no further batch is committed and both
// a Failed result, carrying the number of unprocessed rows, and ctx's error
// are returned.
func (m *Manager) Import(ctx context.Context, req ImportRequest) (*Result, error) {
	if req.ImportID == "" {
		req.ImportID = uuid.NewString()
	}
	run := &importRun{
		m:     m,
		req:   req,
		start: m.now(),
		state: StateIdle,
		log:   logging.WithFields(ctx, "import_id", req.ImportID, "entity", req.Entity.Info.Key),
		res: &Result{
			ImportID: req.ImportID,
			Entity:   req.Entity.Info.Key,
			FileName: req.FileName,
			Failures: []RowFailure{},
		},
	}
	return run.execute(ctx)
}

type pendingRow struct {
	record     Record
	sourceLine int
	data       []string
}

// importRun carries the state of a single Import call.
type importRun struct {
	m       *Manager
	req     ImportRequest
	start   time.Time
	state   State
	log     *slog.Logger
	res     *Result
	profile ImportProfile
	pending []pendingRow
}

func (r *importRun) transition(to State) {
	r.log.Debug("import state", "from", r.state, "to", to)
	r.state = to
	r.res.State = to
}

func (r *importRun) execute(ctx context.Context) (*Result, error) {
	raw, err := ReadLimited(r.req.Data, r.m.maxFileSize)
	if err != nil {
		return nil, err
	}

	base, err := r.m.profiles.Lookup(defaultIfEmpty(r.req.Profile, ProfileDefault))
	if err != nil {
		return nil, err
	}
	text, enc, err := Decode(raw, base.Encoding)
	if err != nil {
		r.log.Warn("import rejected: encoding", "error", err)
		return nil, err
	}

	profile, err := r.m.profiles.Resolve(r.req.Profile, text)
	if err != nil {
		return nil, err
	}
	profile.Encoding = enc
	r.profile = profile
	r.res.Profile = profile.Name
	r.transition(StateProfileResolved)

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = profile.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	// Leading-space trimming would also eat a whitespace delimiter and shift
	// every cell after an empty one.
	reader.TrimLeadingSpace = profile.TrimWhitespace && !unicode.IsSpace(profile.Delimiter)
	src := newRowSource(reader, text)

	fields := r.req.Entity.Fields
	headers := r.req.Entity.FieldNames()
	if profile.SkipHeader {
		headers, err = src.header()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
	}

	mapping, err := r.m.mapper.ResolveWithOverrides(headers, fields, r.req.Overrides)
	if err != nil {
		r.log.Warn("import rejected: mapping", "error", err)
		return nil, err
	}
	r.transition(StateMappingResolved)

	r.log.Info("import started",
		"file", r.req.FileName,
		"profile", profile.Name,
		"delimiter", profile.DelimiterName(),
		"encoding", enc,
		"bytes", len(raw),
	)
	r.transition(StateProcessing)

	rows := NewRowValidator(fields, mapping, profile)
	line := 0

	for {
		row, err := src.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		line++
		r.res.TotalRows++
		rec, sourceLine := row.cells, row.line

		if row.parseErr != nil {
			r.addFailure(RowFailure{Line: line, SourceLine: sourceLine, Kind: KindParse, Reason: row.parseErr.Err.Error(), Data: rec})
			continue
		}

		if line%contextCheckInterval == 0 && ctx.Err() != nil {
			return r.interrupt(ctx, src, 1)
		}

		if isEmptyRow(rec) && profile.SkipEmptyRows {
			r.res.Skipped++
			continue
		}

		record, failure := rows.Build(line, rec)
		if failure != nil {
			failure.SourceLine = sourceLine
			r.addFailure(*failure)
			continue
		}

		r.pending = append(r.pending, pendingRow{record: record, sourceLine: sourceLine, data: rec})
		if len(r.pending) >= profile.BatchSize {
			if !r.flush(ctx) {
				return r.interrupt(ctx, src, 0)
			}
		}
	}

	if !r.flush(ctx) {
		return r.interrupt(ctx, src, 0)
	}

	r.transition(StateCompleted)
	r.finish()
	r.log.Info("import completed",
		"total", r.res.TotalRows,
		"imported", r.res.Imported,
		"skipped", r.res.Skipped,
		"failed", r.res.Failed,
		"batches", r.res.Batches,
		"duration_ms", r.res.Duration.Milliseconds(),
	)
	return r.res, nil
}

// flush commits the pending batch. It returns false when ctx has ended and
// the batch was left uncommitted.
func (r *importRun) flush(ctx context.Context) bool {
	if len(r.pending) == 0 {
		return true
	}
	if ctx.Err() != nil {
		return false
	}

	records := make([]Record, len(r.pending))
	for i, p := range r.pending {
		records[i] = p.record
	}

	err := r.m.writer.WriteBatch(ctx, r.req.Entity, r.req.ImportID, records)
	if err != nil && ctx.Err() != nil {
		return false
	}

	r.res.Batches++
	if err != nil {
		bce := &BatchCommitError{Batch: r.res.Batches, Rows: len(records), Err: err}
		r.log.Warn("batch rejected", "batch", bce.Batch, "rows", bce.Rows, "error", err)
		for _, p := range r.pending {
			r.addFailure(RowFailure{
				Line:       p.record.Line,
				SourceLine: p.sourceLine,
				Kind:       KindBatchCommit,
				Reason:     bce.Error(),
				Data:       p.data,
			})
		}
	} else {
		r.res.Imported += len(records)
	}
	r.pending = nil
	r.progress()
	return true
}

// interrupt stops the import after ctx ended. current counts rows already
// read but not yet handled.
func (r *importRun) interrupt(ctx context.Context, src *rowSource, current int) (*Result, error) {
	unprocessed := current + len(r.pending)
	r.pending = nil

	for {
		if _, err := src.next(); err != nil {
			break
		}
		unprocessed++
		r.res.TotalRows++
	}

	r.res.Unprocessed = unprocessed
	r.res.Error = fmt.Sprintf("import interrupted: %v", ctx.Err())
	r.transition(StateFailed)
	r.finish()
	r.log.Warn("import interrupted",
		"imported", r.res.Imported,
		"failed", r.res.Failed,
		"unprocessed", unprocessed,
		"error", ctx.Err(),
	)
	return r.res, fmt.Errorf("import interrupted with %d rows unprocessed: %w", unprocessed, ctx.Err())
}

func (r *importRun) addFailure(f RowFailure) {
	r.res.Failures = append(r.res.Failures, f)
}

func (r *importRun) finish() {
	sort.SliceStable(r.res.Failures, func(i, j int) bool {
		return r.res.Failures[i].Line < r.res.Failures[j].Line
	})
	r.res.Failed = len(r.res.Failures)
	r.res.Duration = r.m.now().Sub(r.start)
	r.progress()
}

func (r *importRun) progress() {
	if r.req.OnProgress == nil {
		return
	}
	r.req.OnProgress(Progress{
		ImportID: r.req.ImportID,
		Entity:   r.req.Entity.Info.Key,
		State:    r.state,
		RowsRead: r.res.TotalRows,
		Imported: r.res.Imported,
		Skipped:  r.res.Skipped,
		Failed:   len(r.res.Failures),
		Batches:  r.res.Batches,
	})
}

// isEmptyRow reports whether every cell is blank.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func defaultIfEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
