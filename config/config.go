package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type SlackConfig struct {
	AlertWebhookURL string
}

// IsConfigured returns true if error alerts can be sent to Slack
func (c SlackConfig) IsConfigured() bool {
	return c.AlertWebhookURL != ""
}

type DiscordConfig struct {
	BotToken string
}

type WebhookConfig struct {
	DeliveryTimeout time.Duration
	ProbeTimeout    time.Duration
}

type AppConfig struct {
	// Core configuration
	WebhooksDBFile string // Optional with default "webhooks.json"
	Port           string // Optional with default "8080"
	Environment    string
	ServerLogsURL  string

	DiscordConfig DiscordConfig
	WebhookConfig WebhookConfig
	SlackConfig   SlackConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	botToken, err := getEnvRequired("DISCORD_BOT_TOKEN")
	if err != nil {
		return nil, err
	}

	deliveryTimeout, err := getDurationWithDefault("DELIVERY_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, err
	}

	probeTimeout, err := getDurationWithDefault("PROBE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		WebhooksDBFile: getEnvWithDefault("WEBHOOKS_DB_FILE", "webhooks.json"),
		Port:           getEnvWithDefault("PORT", "8080"),
		Environment:    getEnvWithDefault("ENVIRONMENT", "dev"),
		ServerLogsURL:  getEnvWithDefault("SERVER_LOGS_URL", ""),

		DiscordConfig: DiscordConfig{
			BotToken: botToken,
		},

		WebhookConfig: WebhookConfig{
			DeliveryTimeout: deliveryTimeout,
			ProbeTimeout:    probeTimeout,
		},

		// Slack configuration (optional)
		SlackConfig: SlackConfig{
			AlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		},
	}

	if config.SlackConfig.IsConfigured() {
		log.Printf("✅ Slack error alerts configured")
	} else {
		log.Printf("⚠️ Slack error alerts not configured - errors will only be logged")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %w", key, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return duration, nil
}
