package services

import (
	"context"

	"github.com/samber/mo"

	"webhookrelay/models"
)

// WebhookConfigsService defines the interface for channel webhook configuration operations
type WebhookConfigsService interface {
	SetChannelWebhook(
		ctx context.Context,
		guildID, channelID, webhookURL string,
	) (*models.WebhookConfig, error)
	GetChannelWebhook(ctx context.Context, channelID string) (mo.Option[*models.WebhookConfig], error)
	GetActiveWebhookURL(ctx context.Context, channelID string) (mo.Option[string], error)
	RemoveChannelWebhook(ctx context.Context, channelID string) (bool, error)
	ToggleChannelWebhook(ctx context.Context, channelID string) (mo.Option[*models.WebhookConfig], error)
	ListGuildWebhooks(ctx context.Context, guildID string) ([]*models.WebhookConfig, error)
}
