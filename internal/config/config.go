// Package config defines the top-level configuration for the relay and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by environment variables (the Telegram
// credentials additionally honor their well-known TELEGRAM_* names).
type Config struct {
	App      AppConfig      `toml:"app"`
	Server   ServerConfig   `toml:"server"`
	Telegram TelegramConfig `toml:"telegram"`
	Discord  DiscordConfig  `toml:"discord"`
	Relay    RelayConfig    `toml:"relay"`
	Trailing TrailingConfig `toml:"trailing"`
	WS       WSConfig       `toml:"ws"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// AppConfig holds process-level identity and logging parameters.
type AppConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     duration `toml:"read_timeout"`
	WriteTimeout    duration `toml:"write_timeout"`
	ShutdownTimeout duration `toml:"shutdown_timeout"`
	RateLimitRPS    float64  `toml:"rate_limit_rps"`
	RateLimitBurst  int      `toml:"rate_limit_burst"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// TelegramConfig holds the Telegram Bot API credentials and client settings.
// BotToken and ChatID are required; the process refuses to start without them.
type TelegramConfig struct {
	BotToken string   `toml:"bot_token"`
	ChatID   string   `toml:"chat_id"`
	APIBase  string   `toml:"api_base"`
	Timeout  duration `toml:"timeout"`
}

// DiscordConfig holds the optional secondary Discord webhook sink. The sink
// is wired only when WebhookURL is non-empty.
type DiscordConfig struct {
	WebhookURL string `toml:"webhook_url"`
}

// RelayConfig holds the message-formatting parameters and entry defaults.
type RelayConfig struct {
	Exchange         string   `toml:"exchange"`
	Leverage         string   `toml:"leverage"`
	TakeProfitPct    float64  `toml:"take_profit_pct"`
	StopLossPct      float64  `toml:"stop_loss_pct"`
	DefaultTimeframe string   `toml:"default_timeframe"`
	ClosedTradeTTL   duration `toml:"closed_trade_ttl"`
}

// TrailingConfig holds the trailing-stop calculator parameters, in percent.
type TrailingConfig struct {
	Activation     float64 `toml:"activation"`
	PumpActivation float64 `toml:"pump_activation"`
	LowOffset      float64 `toml:"low_offset"`
	HighOffset     float64 `toml:"high_offset"`
}

// WSConfig gates the WebSocket event stream.
type WSConfig struct {
	Enabled bool `toml:"enabled"`
}

// MetricsConfig gates the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values. The
// trailing constants match the PineScript strategy the alerts originate from.
func Defaults() Config {
	return Config{
		App: AppConfig{
			Name:        "cornixrelay",
			Environment: "development",
			LogLevel:    "info",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     duration{15 * time.Second},
			WriteTimeout:    duration{30 * time.Second},
			ShutdownTimeout: duration{10 * time.Second},
			RateLimitRPS:    10,
			RateLimitBurst:  20,
		},
		Telegram: TelegramConfig{
			APIBase: "https://api.telegram.org",
			Timeout: duration{10 * time.Second},
		},
		Relay: RelayConfig{
			Exchange:         "Binance Futures",
			Leverage:         "Isolated (20X)",
			TakeProfitPct:    5,
			StopLossPct:      3,
			DefaultTimeframe: "15m",
			ClosedTradeTTL:   duration{24 * time.Hour},
		},
		Trailing: TrailingConfig{
			Activation:     0.9,
			PumpActivation: 1.0,
			LowOffset:      0.1,
			HighOffset:     0.2,
		},
		WS:      WSConfig{Enabled: true},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// validLogLevels enumerates accepted log_level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found. A missing Telegram credential
// is fatal to startup; everything else in the relay degrades gracefully.
func (c *Config) Validate() error {
	var errs []string

	// LogLevel
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		errs = append(errs, fmt.Sprintf("app: unknown log_level %q (valid: debug, info, warn, error)", c.App.LogLevel))
	}

	// Telegram — the one hard requirement for the relay to be useful.
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		errs = append(errs, "telegram: bot_token is required (set TELEGRAM_BOT_TOKEN)")
	}
	if strings.TrimSpace(c.Telegram.ChatID) == "" {
		errs = append(errs, "telegram: chat_id is required (set TELEGRAM_CHAT_ID)")
	}
	if c.Telegram.APIBase == "" {
		errs = append(errs, "telegram: api_base must not be empty")
	}
	if c.Telegram.Timeout.Duration <= 0 {
		errs = append(errs, "telegram: timeout must be positive")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimitRPS <= 0 {
		errs = append(errs, "server: rate_limit_rps must be > 0")
	}
	if c.Server.RateLimitBurst < 1 {
		errs = append(errs, "server: rate_limit_burst must be >= 1")
	}

	// Relay
	if c.Relay.TakeProfitPct <= 0 || c.Relay.TakeProfitPct >= 100 {
		errs = append(errs, fmt.Sprintf("relay: take_profit_pct must be in (0, 100), got %v", c.Relay.TakeProfitPct))
	}
	if c.Relay.StopLossPct <= 0 || c.Relay.StopLossPct >= 100 {
		errs = append(errs, fmt.Sprintf("relay: stop_loss_pct must be in (0, 100), got %v", c.Relay.StopLossPct))
	}
	if c.Relay.ClosedTradeTTL.Duration < 0 {
		errs = append(errs, "relay: closed_trade_ttl must not be negative")
	}

	// Trailing
	if c.Trailing.Activation <= 0 {
		errs = append(errs, "trailing: activation must be > 0")
	}
	if c.Trailing.PumpActivation <= 0 {
		errs = append(errs, "trailing: pump_activation must be > 0")
	}
	if c.Trailing.LowOffset <= 0 {
		errs = append(errs, "trailing: low_offset must be > 0")
	}
	if c.Trailing.HighOffset < c.Trailing.LowOffset {
		errs = append(errs, "trailing: high_offset must be >= low_offset")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
