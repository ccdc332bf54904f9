package clients

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"webhookrelay/models"
)

// WebhookClient delivers canonical events to webhook endpoints
type WebhookClient interface {
	Deliver(ctx context.Context, event *models.CanonicalEvent, webhookURL string) models.DeliveryResult
	Probe(ctx context.Context, webhookURL string) bool
}

// DiscordClient defines the Discord lookups needed to map SDK events to domain models
type DiscordClient interface {
	GetChannel(channelID string) (*models.DiscordChannel, error)
	GetGuild(guildID string) (*models.DiscordGuild, error)
	GetMessage(channelID, messageID string) (*discordgo.Message, error)
	GetUser(userID string) (*discordgo.User, error)
}
