// cmd/server is the shared event store. It wires the store, service and
// handler layers together and serves /events over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventboard/eventboard/internal/config"
	"github.com/eventboard/eventboard/internal/database"
	"github.com/eventboard/eventboard/internal/handler"
	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/repository"
	"github.com/eventboard/eventboard/internal/service"
	"github.com/eventboard/eventboard/internal/store"
)

func main() {
	configPath := flag.String("config", getEnv("EVENTBOARD_CONFIG", "eventboard.yaml"), "Path to config file")
	listen := flag.String("listen", "", "HTTP listen address (overrides config if set)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("failed to load config", err, "path", *configPath)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	logging.SetLevel(cfg.LogLevel)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logging.Error("unknown timezone, using UTC", err, "timezone", cfg.Timezone)
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Open the collection store ──────────────────────────────────────
	st, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logging.Error("failed to open store", err, "driver", cfg.Store.Driver)
		os.Exit(1)
	}
	defer cleanup()

	if cfg.Backup.Cron != "" {
		if b, ok := st.(store.Backuper); ok {
			sched, err := store.ScheduleBackups(cfg.Backup.Cron, b)
			if err != nil {
				logging.Error("backups disabled", err)
			} else {
				defer sched.Stop()
				logging.Info("backups scheduled", "cron", cfg.Backup.Cron)
			}
		}
	}

	// ── 2. Wire up layers ─────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(st)
	eventSvc := service.NewEventService(eventRepo)
	eventHandler := handler.NewEventHandler(eventSvc, loc)

	// ── 3. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      handler.NewRouter(eventHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Info("server listening", "addr", cfg.Listen, "driver", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("server error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logging.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("graceful shutdown failed", err)
		return
	}
	logging.Info("server stopped")
}

// openStore returns the configured collection store and a function that
// releases its resources.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Store.Postgres)
		if err != nil {
			return nil, nil, err
		}
		ps := store.NewPostgresStore(pool, cfg.Store.Document)
		if err := ps.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logging.Info("connected to PostgreSQL", "document", cfg.Store.Document)
		return ps, pool.Close, nil
	default:
		fs := store.NewFileStore(cfg.Store.DataFile, cfg.Backup.Dir)
		logging.Info("using data file", "path", fs.Path())
		return fs, func() {}, nil
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
