package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/estateadmin/internal/auth"
	"github.com/JonMunkholm/estateadmin/internal/config"
	"github.com/JonMunkholm/estateadmin/internal/core"
	_ "github.com/JonMunkholm/estateadmin/internal/core/entities" // register import entities
	"github.com/JonMunkholm/estateadmin/internal/database"
	"github.com/JonMunkholm/estateadmin/internal/logging"
	"github.com/JonMunkholm/estateadmin/internal/mail"
	"github.com/JonMunkholm/estateadmin/internal/reminder"
	"github.com/JonMunkholm/estateadmin/internal/territory"
	"github.com/JonMunkholm/estateadmin/internal/web"
)

// tokenIssuer is the iss claim of session tokens.
const tokenIssuer = "estateadmin"

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"mail_provider", cfg.Mail.Provider,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	service, err := core.NewService(core.NewPgStore(pool), core.NewPgRunStore(pool), cfg.Import)
	if err != nil {
		slog.Error("failed to create import service", "error", err)
		os.Exit(1)
	}
	for _, def := range service.Entities() {
		slog.Debug("import entity registered", "key", def.Info.Key, "group", def.Info.Group, "fields", len(def.Fields))
	}
	slog.Info("import entities registered", "count", len(service.Entities()))

	sender, err := mail.NewSender(cfg.Mail, os.Stdout)
	if err != nil {
		slog.Error("failed to configure mail", "error", err)
		os.Exit(1)
	}
	reminders := reminder.NewStore(cfg.Security.SessionTTL)

	server := web.NewServer(web.Deps{
		Imports:   service,
		Territory: territory.NewPgStore(pool),
		Tokens:    auth.NewTokenService(cfg.Security.SessionSecret, tokenIssuer, cfg.Security.SessionTTL),
		Reminders: reminders,
		Mailer:    reminder.NewMailer(sender, cfg.Mail.AppName, cfg.Mail.TwoFactorSetupURL),
	}, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())

	go service.StartHistoryPurge(jobCtx, core.RetentionConfig{
		RetentionDays: cfg.History.RetentionDays,
		CheckInterval: cfg.History.CheckInterval,
	})
	go reminders.StartPruning(jobCtx, 15*time.Minute)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	// ListenAndServe returns as soon as Shutdown starts; wait for it to drain.
	<-stopped
	slog.Info("server stopped")
}
