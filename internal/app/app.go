// Package app provides the top-level application lifecycle management for
// the relay. It wires together all dependencies (registry, senders, event
// bus, service, handlers) and runs the HTTP server and WebSocket hub until
// shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/cornixrelay/internal/config"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the HTTP
// server and the WebSocket hub, and blocks until the context is cancelled or
// a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("environment", a.cfg.App.Environment),
		slog.String("log_level", a.cfg.App.LogLevel),
	)
	a.startupBanner()

	deps, cleanup, err := Wire(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Server.Start()
	})

	if deps.Hub != nil {
		g.Go(func() error {
			if err := deps.Hub.Run(ctx); err != nil && err != context.Canceled {
				return fmt.Errorf("app: ws hub: %w", err)
			}
			return nil
		})
	}

	// Shutdown watcher: when the context is cancelled, give in-flight
	// requests a bounded window to complete.
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		return deps.Server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return ctx.Err()
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// startupBanner logs the effective (redacted) configuration once at boot.
func (a *App) startupBanner() {
	red := config.RedactedConfig(a.cfg)
	a.logger.Info("effective configuration",
		slog.String("server_addr", fmt.Sprintf("%s:%d", red.Server.Host, red.Server.Port)),
		slog.String("exchange", red.Relay.Exchange),
		slog.String("leverage", red.Relay.Leverage),
		slog.Duration("telegram_timeout", red.Telegram.Timeout.Duration),
		slog.Bool("ws_enabled", red.WS.Enabled),
		slog.Bool("metrics_enabled", red.Metrics.Enabled),
		slog.Duration("closed_trade_ttl", red.Relay.ClosedTradeTTL.Duration),
	)
}
