package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies environment variable overrides, and returns the
// final Config. A missing file is not an error: the relay is commonly
// configured entirely through the environment. The returned Config has NOT
// been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known environment variables and overwrites the
// corresponding Config fields when a variable is set (i.e. not empty). This
// lets operators inject secrets at deploy time without touching the TOML
// file. The Telegram credentials honor their platform-standard names.
func applyEnvOverrides(cfg *Config) {
	// ── Telegram (platform-standard names) ──
	setStr(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setStr(&cfg.Telegram.APIBase, "RELAY_TELEGRAM_API_BASE")
	setDuration(&cfg.Telegram.Timeout, "RELAY_TELEGRAM_TIMEOUT")

	// ── Discord ──
	setStr(&cfg.Discord.WebhookURL, "RELAY_DISCORD_WEBHOOK_URL")

	// ── App ──
	setStr(&cfg.App.Name, "RELAY_APP_NAME")
	setStr(&cfg.App.Environment, "RELAY_ENVIRONMENT")
	setStr(&cfg.App.LogLevel, "RELAY_LOG_LEVEL")

	// ── Server ──
	setStr(&cfg.Server.Host, "RELAY_SERVER_HOST")
	setInt(&cfg.Server.Port, "RELAY_SERVER_PORT")
	setDuration(&cfg.Server.ReadTimeout, "RELAY_SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "RELAY_SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "RELAY_SERVER_SHUTDOWN_TIMEOUT")
	setFloat64(&cfg.Server.RateLimitRPS, "RELAY_SERVER_RATE_LIMIT_RPS")
	setInt(&cfg.Server.RateLimitBurst, "RELAY_SERVER_RATE_LIMIT_BURST")
	setStringSlice(&cfg.Server.CORSOrigins, "RELAY_SERVER_CORS_ORIGINS")

	// ── Relay ──
	setStr(&cfg.Relay.Exchange, "RELAY_EXCHANGE")
	setStr(&cfg.Relay.Leverage, "RELAY_LEVERAGE")
	setFloat64(&cfg.Relay.TakeProfitPct, "RELAY_TAKE_PROFIT_PCT")
	setFloat64(&cfg.Relay.StopLossPct, "RELAY_STOP_LOSS_PCT")
	setStr(&cfg.Relay.DefaultTimeframe, "RELAY_DEFAULT_TIMEFRAME")
	setDuration(&cfg.Relay.ClosedTradeTTL, "RELAY_CLOSED_TRADE_TTL")

	// ── Trailing ──
	setFloat64(&cfg.Trailing.Activation, "RELAY_TRAILING_ACTIVATION")
	setFloat64(&cfg.Trailing.PumpActivation, "RELAY_TRAILING_PUMP_ACTIVATION")
	setFloat64(&cfg.Trailing.LowOffset, "RELAY_TRAILING_LOW_OFFSET")
	setFloat64(&cfg.Trailing.HighOffset, "RELAY_TRAILING_HIGH_OFFSET")

	// ── Feature gates ──
	setBool(&cfg.WS.Enabled, "RELAY_WS_ENABLED")
	setBool(&cfg.Metrics.Enabled, "RELAY_METRICS_ENABLED")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
