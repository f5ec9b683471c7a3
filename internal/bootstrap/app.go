package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/dashboard"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/config"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/telemetry"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server and dashboard lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	dashboard dashboard.Service
	telemetry *telemetry.Provider
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, dash dashboard.Service, tp *telemetry.Provider) *App {
	return &App{
		cfg:       cfg,
		logger:    logger.With("component", "bootstrap"),
		server:    server,
		dashboard: dash,
		telemetry: tp,
	}
}

// Run starts the first report load and the HTTP server, and blocks until
// shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.dashboard.Start()

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address, "source", a.cfg.Dashboard.SourceURL)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.shutdown()
	case err := <-errCh:
		a.dashboard.Close()
		a.flushTelemetry()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(shutdownCtx)
	a.dashboard.Close()
	a.flushTelemetry()
	return err
}

func (a *App) flushTelemetry() {
	if a.telemetry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", "error", err)
	}
}
