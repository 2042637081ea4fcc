package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidateWithCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.ChatID = "-100200300"

	require.NoError(t, cfg.Validate())
}

func TestValidateMissingTelegramCredentials(t *testing.T) {
	cfg := Defaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot_token is required")
	assert.Contains(t, err.Error(), "chat_id is required")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.ChatID = "-1"
	cfg.Server.Port = 70000
	cfg.Relay.TakeProfitPct = 0
	cfg.Trailing.HighOffset = 0.05 // below low_offset

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be 1-65535")
	assert.Contains(t, err.Error(), "take_profit_pct")
	assert.Contains(t, err.Error(), "high_offset")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "Binance Futures", cfg.Relay.Exchange)
	assert.Equal(t, 10*time.Second, cfg.Telegram.Timeout.Duration)
}

func TestLoadTOMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[app]
log_level = "debug"

[server]
port = 9000
read_timeout = "5s"

[relay]
exchange = "Bybit"
take_profit_pct = 4.5

[trailing]
pump_activation = 1.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "env-chat")
	t.Setenv("RELAY_SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	// TOML over defaults.
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "Bybit", cfg.Relay.Exchange)
	assert.Equal(t, 4.5, cfg.Relay.TakeProfitPct)
	assert.Equal(t, 1.5, cfg.Trailing.PumpActivation)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration)

	// Env over TOML.
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "env-chat", cfg.Telegram.ChatID)

	require.NoError(t, cfg.Validate())
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Telegram.BotToken = "secret"
	cfg.Discord.WebhookURL = "https://discord.com/api/webhooks/x"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Telegram.BotToken)
	assert.Equal(t, "***", red.Discord.WebhookURL)

	// The original must be untouched.
	assert.Equal(t, "secret", cfg.Telegram.BotToken)
}
