package core

// scheduler.go runs the import history retention job. It runs once at start
// and then every CheckInterval until ctx is cancelled. A failed run is logged
// and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls the history purge job.
type RetentionConfig struct {
	RetentionDays int
	CheckInterval time.Duration
}

// StartHistoryPurge blocks, purging import runs older than the retention
// window. Run it in its own goroutine.
func (s *Service) StartHistoryPurge(ctx context.Context, cfg RetentionConfig) {
	if s.runs == nil || cfg.RetentionDays <= 0 || cfg.CheckInterval <= 0 {
		slog.Info("history purge disabled")
		return
	}
	slog.Info("history purge started", "retention_days", cfg.RetentionDays, "interval", cfg.CheckInterval)

	s.purgeHistory(ctx, cfg.RetentionDays)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history purge stopped")
			return
		case <-ticker.C:
			s.purgeHistory(ctx, cfg.RetentionDays)
		}
	}
}

func (s *Service) purgeHistory(ctx context.Context, days int) {
	start := time.Now()
	cutoff := s.now().AddDate(0, 0, -days)

	purged, err := s.runs.PurgeRuns(ctx, cutoff)
	if err != nil {
		slog.Error("history purge failed", "error", err)
		return
	}
	slog.Info("history purged",
		"runs_purged", purged,
		"cutoff", cutoff.Format(time.DateOnly),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
