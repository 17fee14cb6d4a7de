package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/travelsplit/internal/backup"
	"github.com/mmynk/travelsplit/internal/config"
	"github.com/mmynk/travelsplit/internal/ledger"
	"github.com/mmynk/travelsplit/internal/metrics"
	"github.com/mmynk/travelsplit/internal/server"
	"github.com/mmynk/travelsplit/internal/storage"
	"github.com/mmynk/travelsplit/internal/storage/memory"
	"github.com/mmynk/travelsplit/internal/storage/postgres"
	"github.com/mmynk/travelsplit/internal/storage/sqlite"
	"github.com/mmynk/travelsplit/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	m := metrics.New()
	l := ledger.New(store, ledger.WithMetrics(m))

	var scheduler *backup.Scheduler
	if cfg.BackupSchedule != "" {
		b := backup.New(l, cfg.BackupDir, cfg.BackupKeep, backup.WithMetrics(m))
		if scheduler, err = backup.Schedule(cfg.BackupSchedule, b); err != nil {
			return err
		}
	}

	handler := server.New(l, m, server.Options{CORSOrigin: cfg.CORSOrigin})

	// h2c serves HTTP/2 without TLS, which Connect clients use.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "storage", cfg.Storage)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var errs error
	errs = multierr.Append(errs, srv.Shutdown(shutdownCtx))
	if scheduler != nil {
		errs = multierr.Append(errs, scheduler.Stop(shutdownCtx))
	}
	return errs
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		slog.Warn("Using in-memory storage, data is lost on exit")
		return memory.New(), nil
	case config.StoragePostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		slog.Info("Storage initialized", "backend", cfg.Storage)
		return store, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		slog.Info("Storage initialized", "backend", cfg.Storage, "database", cfg.DBPath)
		return store, nil
	}
}
