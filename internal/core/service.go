package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/JonMunkholm/estateadmin/internal/config"
	"github.com/JonMunkholm/estateadmin/internal/logging"
)

var (
	// ErrAlreadyRolledBack is returned when rolling back an import twice.
	ErrAlreadyRolledBack = errors.New("import already rolled back")
	// ErrUnsupportedFormat is returned for a template format other than csv or xlsx.
	ErrUnsupportedFormat = errors.New("unsupported template format")
	ErrHistoryNotSaved   = errors.New("import history not saved")
)

// Template formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Service is the entry point used by the web layer.
type Service struct {
	store     ImportStore
	runs      RunStore
	profiles  *ProfileResolver
	mapper    *MappingService
	manager   *Manager
	templates *TemplateGenerator
	limiter   *ImportLimiter
	cfg       config.ImportConfig
	now       func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceClock replaces time.Now for templates and history.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService builds the pipeline. runs may be nil, which disables history,
// duplicate detection and rollback.
func NewService(store ImportStore, runs RunStore, cfg config.ImportConfig, opts ...ServiceOption) (*Service, error) {
	aliases, err := ParseAliasPairs(cfg.Aliases)
	if err != nil {
		return nil, fmt.Errorf("import aliases: %w", err)
	}

	s := &Service{
		store: store,
		runs:  runs,
		cfg:   cfg,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.profiles = NewProfileResolver(cfg.BatchSize, cfg.SampleRecords)
	s.mapper = NewMappingService(aliases)
	s.manager = NewManager(s.profiles, s.mapper, store,
		WithMaxFileSize(cfg.MaxFileSize),
		WithClock(s.now),
	)
	s.templates = NewTemplateGenerator(s.now)
	s.limiter = NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime)
	return s, nil
}

// Entities lists the registered import targets.
func (s *Service) Entities() []EntityDefinition {
	return All()
}

// Entity returns one import target.
func (s *Service) Entity(key string) (EntityDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return EntityDefinition{}, fmt.Errorf("%w: %s", ErrUnknownEntity, key)
	}
	return def, nil
}

// Profiles lists the preset CSV dialects.
func (s *Service) Profiles() []ImportProfile {
	return s.profiles.Presets()
}

// Template renders the download template of an entity in format (csv or xlsx).
// It returns the content, the file name and the content type.
func (s *Service) Template(key, format string) ([]byte, string, string, error) {
	def, err := s.Entity(key)
	if err != nil {
		return nil, "", "", err
	}

	switch format {
	case "", FormatCSV:
		body, name, err := s.templates.Generate(def)
		return body, name, "text/csv; charset=utf-8", err
	case FormatXLSX:
		body, name, err := s.templates.GenerateXLSX(def)
		return body, name, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		return nil, "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// PreviewMapping resolves headers against an entity without importing.
func (s *Service) PreviewMapping(key string, headers []string, overrides map[string]string) (ColumnMapping, error) {
	def, err := s.Entity(key)
	if err != nil {
		return ColumnMapping{}, err
	}
	return s.mapper.ResolveWithOverrides(headers, def.Fields, overrides)
}

// ImportInput is an import request from a caller.
type ImportInput struct {
	Entity         string
	FileName       string
	Reader         io.Reader
	Profile        string
	Overrides      map[string]string
	AllowDuplicate bool
	OnProgress     ProgressCallback
}

// Import runs one import under the concurrency limit and the configured
// timeout, then records it in the history.
func (s *Service) Import(ctx context.Context, in ImportInput) (*Result, error) {
	def, err := s.Entity(in.Entity)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	counter := NewCountingReader(NewBOMSkippingReader(in.Reader))
	data, err := ReadLimited(counter, s.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	sum := Checksum(data)

	log := logging.WithFields(ctx, "entity", def.Info.Key, "file", in.FileName, "checksum", sum)

	if s.runs != nil && !in.AllowDuplicate {
		dup, err := s.runs.ChecksumImported(ctx, def.Info.Key, sum)
		if err != nil {
			return nil, fmt.Errorf("check duplicate import: %w", err)
		}
		if dup {
			log.Info("duplicate import refused")
			return nil, ErrDuplicateFile
		}
	}

	importCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	res, err := s.manager.Import(importCtx, ImportRequest{
		Entity:     def,
		FileName:   in.FileName,
		Data:       bytes.NewReader(data),
		Profile:    in.Profile,
		Overrides:  in.Overrides,
		OnProgress: in.OnProgress,
	})

	if res != nil && s.runs != nil {
		run := RunFromResult(res, sum, ActorFromContext(ctx), s.now())
		if serr := s.runs.SaveRun(context.WithoutCancel(ctx), run, res.Failures); serr != nil {
			log.Error("save import history failed", "import_id", res.ImportID, "error", serr)
			res.Error = joinNonEmpty(res.Error, fmt.Sprintf("%v: rollback and duplicate detection are unavailable for this import", ErrHistoryNotSaved))
		}
	}
	if res != nil {
		log.Debug("import read", "bytes", counter.BytesRead())
	}
	return res, err
}

// History returns the latest runs of an entity.
func (s *Service) History(ctx context.Context, key string, limit int) ([]Run, error) {
	if _, err := s.Entity(key); err != nil {
		return nil, err
	}
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(ctx, key, limit)
}

// RollbackResult reports a rollback.
type RollbackResult struct {
	ImportID    string `json:"importId"`
	Entity      string `json:"entity"`
	RowsDeleted int64  `json:"rowsDeleted"`
}

// Rollback deletes every row an import wrote and marks the run rolled back.
func (s *Service) Rollback(ctx context.Context, importID string) (RollbackResult, error) {
	if s.runs == nil {
		return RollbackResult{}, ErrRunNotFound
	}
	run, err := s.runs.GetRun(ctx, importID)
	if err != nil {
		return RollbackResult{}, err
	}
	if run.RolledBackAt != nil {
		return RollbackResult{}, ErrAlreadyRolledBack
	}
	def, err := s.Entity(run.Entity)
	if err != nil {
		return RollbackResult{}, err
	}

	deleted, err := s.store.DeleteByImport(ctx, def, importID)
	if err != nil {
		return RollbackResult{}, err
	}
	if err := s.runs.MarkRolledBack(ctx, importID, s.now()); err != nil {
		return RollbackResult{}, err
	}

	logging.WithFields(ctx, "import_id", importID, "entity", def.Info.Key).
		Info("import rolled back", "rows_deleted", deleted)
	return RollbackResult{ImportID: importID, Entity: def.Info.Key, RowsDeleted: deleted}, nil
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish, for graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Checksum returns the hex xxhash64 of data.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
