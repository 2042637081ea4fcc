package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/cornixrelay/internal/bus"
	"github.com/alanyoungcy/cornixrelay/internal/config"
	"github.com/alanyoungcy/cornixrelay/internal/cornix"
	"github.com/alanyoungcy/cornixrelay/internal/metrics"
	"github.com/alanyoungcy/cornixrelay/internal/notify"
	"github.com/alanyoungcy/cornixrelay/internal/registry"
	"github.com/alanyoungcy/cornixrelay/internal/server"
	"github.com/alanyoungcy/cornixrelay/internal/server/handler"
	"github.com/alanyoungcy/cornixrelay/internal/server/ws"
	"github.com/alanyoungcy/cornixrelay/internal/service"
)

// Version is the build version, overridable at link time.
var Version = "dev"

// Dependencies bundles the long-running components Run needs to drive.
type Dependencies struct {
	Server *server.Server
	Hub    *ws.Hub
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Trade registry (in-memory buntdb) ---
	reg, err := registry.New(registry.WithClosedTradeTTL(cfg.Relay.ClosedTradeTTL.Duration))
	if err != nil {
		return nil, nil, fmt.Errorf("wire: registry: %w", err)
	}
	closers = append(closers, func() { _ = reg.Shutdown() })

	metrics.RegisterOpenTrades(func() float64 {
		n, err := reg.OpenCount(context.Background())
		if err != nil {
			return 0
		}
		return float64(n)
	})

	// --- Event bus ---
	eventBus := bus.New()
	closers = append(closers, eventBus.Wait)

	// --- Message sinks ---
	senders := []notify.Sender{
		notify.NewTelegramSender(
			cfg.Telegram.APIBase,
			cfg.Telegram.BotToken,
			cfg.Telegram.ChatID,
			cfg.Telegram.Timeout.Duration,
		),
	}
	if cfg.Discord.WebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Discord.WebhookURL, cfg.Telegram.Timeout.Duration))
	}
	notifier := notify.NewNotifier(senders, logger)

	// --- Relay service ---
	formatter := cornix.NewFormatter(cfg.Relay.Exchange, cfg.Relay.Leverage)
	calc := cornix.Calculator{
		Activation:     cfg.Trailing.Activation,
		PumpActivation: cfg.Trailing.PumpActivation,
		LowOffset:      cfg.Trailing.LowOffset,
		HighOffset:     cfg.Trailing.HighOffset,
	}
	relay := service.NewRelayService(reg, notifier, formatter, calc, eventBus, service.Config{
		TakeProfitPct:    cfg.Relay.TakeProfitPct,
		StopLossPct:      cfg.Relay.StopLossPct,
		DefaultTimeframe: cfg.Relay.DefaultTimeframe,
	}, logger)

	// --- WebSocket hub (optional) ---
	var hub *ws.Hub
	if cfg.WS.Enabled {
		hub, err = ws.NewHub(eventBus, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: ws hub: %w", err)
		}
	}

	// --- HTTP server ---
	handlers := server.Handlers{
		Webhook: handler.NewWebhookHandler(relay, logger),
		Health:  handler.NewHealthHandler(cfg.App.Name, Version, reg, logger),
		Trades:  handler.NewTradesHandler(reg, logger),
	}
	srv := server.NewServer(server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout.Duration,
		WriteTimeout:   cfg.Server.WriteTimeout.Duration,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MetricsEnabled: cfg.Metrics.Enabled,
	}, handlers, hub, logger)

	return &Dependencies{Server: srv, Hub: hub}, cleanup, nil
}
