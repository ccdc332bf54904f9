package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DISCORD_BOT_TOKEN",
		"WEBHOOKS_DB_FILE",
		"PORT",
		"ENVIRONMENT",
		"SERVER_LOGS_URL",
		"DELIVERY_TIMEOUT",
		"PROBE_TIMEOUT",
		"SLACK_ALERT_WEBHOOK_URL",
	} {
		t.Setenv(key, "")
	}
	// keep godotenv from picking up a developer's .env
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "token", config.DiscordConfig.BotToken)
	assert.Equal(t, "webhooks.json", config.WebhooksDBFile)
	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, "dev", config.Environment)
	assert.Equal(t, 20*time.Second, config.WebhookConfig.DeliveryTimeout)
	assert.Equal(t, 10*time.Second, config.WebhookConfig.ProbeTimeout)
	assert.False(t, config.SlackConfig.IsConfigured())
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("WEBHOOKS_DB_FILE", "/data/webhooks.json")
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("DELIVERY_TIMEOUT", "5s")
	t.Setenv("PROBE_TIMEOUT", "1500ms")
	t.Setenv("SLACK_ALERT_WEBHOOK_URL", "https://hooks.slack.com/services/x")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/data/webhooks.json", config.WebhooksDBFile)
	assert.Equal(t, "9090", config.Port)
	assert.Equal(t, "prod", config.Environment)
	assert.Equal(t, 5*time.Second, config.WebhookConfig.DeliveryTimeout)
	assert.Equal(t, 1500*time.Millisecond, config.WebhookConfig.ProbeTimeout)
	assert.True(t, config.SlackConfig.IsConfigured())
}

func TestLoadConfig_MissingBotToken(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_BOT_TOKEN")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")

	t.Setenv("DELIVERY_TIMEOUT", "soon")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("DELIVERY_TIMEOUT", "-1s")
	_, err = LoadConfig()
	require.Error(t, err)
}
