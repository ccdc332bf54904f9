package models

import "time"

// WebhookConfig associates a Discord channel with the webhook that receives its events
type WebhookConfig struct {
	ChannelID  string    `json:"channel_id"`
	GuildID    string    `json:"guild_id"`
	WebhookURL string    `json:"webhook_url"`
	CreatedAt  time.Time `json:"created_at"`
	Active     bool      `json:"active"`
}
