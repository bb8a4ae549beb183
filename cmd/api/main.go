package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PratikDhanave/trapwatch-service/internal/config"
	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
	"github.com/PratikDhanave/trapwatch-service/internal/geofence"
	"github.com/PratikDhanave/trapwatch-service/internal/httpserver"
	"github.com/PratikDhanave/trapwatch-service/internal/ingest"
	"github.com/PratikDhanave/trapwatch-service/internal/integrity"
	"github.com/PratikDhanave/trapwatch-service/internal/notify"
	"github.com/PratikDhanave/trapwatch-service/internal/observability"
	"github.com/PratikDhanave/trapwatch-service/internal/store"
)

// main boots the service: config → store → notifier → engine → HTTP server.
func main() {
	if err := run(); err != nil {
		slog.Error("trapwatch exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load runtime config from environment (SHARED_SECRET, DEFAULT_CONTACT, ...).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the record store; postgres and sqlite create their schema on open.
	db, err := store.Open(ctx, store.Options{
		Driver:     store.Driver(cfg.StorageDriver),
		DBURL:      cfg.DBURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("close record store", "error", err)
		}
	}()

	notifier, closeNotifier, err := notify.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			logger.Warn("close notifier", "error", err)
		}
	}()

	router := geofence.NewRouter(cfg.Zones, cfg.DefaultContact)
	engine, err := escalation.New(db, router, notifier, cfg.EscalationThreshold,
		escalation.WithLogger(logger),
		escalation.WithNotifyTimeout(cfg.NotifyTimeout),
	)
	if err != nil {
		return err
	}

	svc, err := ingest.New(db, integrity.NewVerifier(cfg.SharedSecret), engine,
		ingest.WithLogger(logger),
		ingest.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpserver.NewRouter(cfg, svc, db, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started",
			"addr", cfg.HTTPAddr,
			"storage", cfg.StorageDriver,
			"notifier", cfg.Notifier,
			"zones", len(cfg.Zones),
			"threshold", cfg.EscalationThreshold)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
