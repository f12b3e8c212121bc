// Package app assembles the store, action log, summarizer and service
// shared by the orderdesk binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/dshills/orderdesk/internal/actionlog"
	"github.com/dshills/orderdesk/internal/config"
	"github.com/dshills/orderdesk/internal/httpapi"
	"github.com/dshills/orderdesk/internal/mcp"
	"github.com/dshills/orderdesk/internal/service"
	"github.com/dshills/orderdesk/internal/storage"
	"github.com/dshills/orderdesk/internal/summarizer"
)

// App owns the long-lived dependencies of a running process
type App struct {
	Service *service.Service
	cfg     config.Config
	store   *storage.SQLiteStorage
	logger  *slog.Logger
}

// New opens the database and action log and builds the service.
// A summarizer that cannot be configured is logged and left out, so
// everything except summaries keeps working.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	actions, err := actionlog.Open(cfg.ActionLogPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open action log: %w", err)
	}

	sum, err := summarizer.New(summarizer.Config{
		Provider:  cfg.SummaryProvider,
		Model:     cfg.SummaryModel,
		CacheSize: cfg.SummaryCacheSize,
	})
	if err != nil {
		logger.Warn("summaries disabled", "error", err)
		sum = nil
	}

	svc, err := service.New(service.Options{
		Store:      store,
		ActionLog:  actions,
		Summarizer: sum,
		Logger:     logger,
		ExportDir:  cfg.ExportDir,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{Service: svc, cfg: cfg, store: store, logger: logger}, nil
}

// Close releases the summarizer and the database
func (a *App) Close() error {
	return errors.Join(a.Service.Close(), a.store.Close())
}

// ServeMCP serves MCP on stdio until the client disconnects or a signal arrives
func (a *App) ServeMCP() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("MCP server ready, listening on stdio", "db", a.cfg.DBPath)
		errCh <- mcp.NewServer(a.Service, a.logger).Serve()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-errCh:
		return err
	case sig := <-shutdown:
		a.logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	}
}

// ServeHTTP serves the REST API on cfg.HTTPAddr and shuts down gracefully on
// SIGINT or SIGTERM, waiting up to cfg.ShutdownTimeout for in-flight requests.
func (a *App) ServeHTTP() error {
	r := chi.NewRouter()
	httpapi.NewRouter(r, a.logger).Init(a.Service)
	srv := httpapi.NewServer(a.cfg.HTTPAddr, r)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server started", "addr", a.cfg.HTTPAddr)
		errCh <- srv.Run()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		if appErr != nil {
			a.logger.Error("HTTP server failed", "error", appErr)
		}
	case <-shutdown:
		a.logger.Info("received shutdown signal, stopping gracefully")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		a.logger.Error("HTTP server shutdown error", "error", err)
		return errors.Join(appErr, err)
	}
	a.logger.Info("HTTP server stopped")
	return appErr
}
