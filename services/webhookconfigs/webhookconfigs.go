package webhookconfigs

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samber/mo"

	"webhookrelay/core"
	"webhookrelay/models"
)

// WebhookConfigsRepository defines the interface for webhook config persistence
type WebhookConfigsRepository interface {
	UpsertWebhookConfig(ctx context.Context, channelID, webhookURL, guildID string) (*models.WebhookConfig, error)
	GetWebhookConfig(ctx context.Context, channelID string) mo.Option[*models.WebhookConfig]
	GetActiveWebhookURL(ctx context.Context, channelID string) mo.Option[string]
	DeleteWebhookConfig(ctx context.Context, channelID string) (bool, error)
	ToggleWebhookConfig(ctx context.Context, channelID string) (bool, error)
	ListWebhookConfigsByGuild(ctx context.Context, guildID string) []*models.WebhookConfig
}

type WebhookConfigsService struct {
	webhookConfigsRepo WebhookConfigsRepository
}

func NewWebhookConfigsService(repo WebhookConfigsRepository) *WebhookConfigsService {
	return &WebhookConfigsService{
		webhookConfigsRepo: repo,
	}
}

// ValidateWebhookURL accepts only URLs starting with http:// or https://
func ValidateWebhookURL(webhookURL string) error {
	if strings.HasPrefix(webhookURL, "http://") || strings.HasPrefix(webhookURL, "https://") {
		return nil
	}
	return fmt.Errorf("invalid webhook URL %q: %w", webhookURL, core.ErrInvalidWebhookURL)
}

func (s *WebhookConfigsService) SetChannelWebhook(
	ctx context.Context,
	guildID, channelID, webhookURL string,
) (*models.WebhookConfig, error) {
	log.Printf("📋 Starting to set webhook for channel %s in guild %s", channelID, guildID)
	if channelID == "" {
		return nil, fmt.Errorf("channel ID cannot be empty")
	}
	if guildID == "" {
		return nil, fmt.Errorf("guild ID cannot be empty")
	}
	if err := ValidateWebhookURL(webhookURL); err != nil {
		return nil, err
	}

	config, err := s.webhookConfigsRepo.UpsertWebhookConfig(ctx, channelID, webhookURL, guildID)
	if err != nil {
		log.Printf("❌ Failed to save webhook for channel %s: %v", channelID, err)
		return nil, fmt.Errorf("failed to save webhook config: %w", err)
	}

	log.Printf("📋 Completed successfully - set webhook for channel %s", channelID)
	return config, nil
}

func (s *WebhookConfigsService) GetChannelWebhook(
	ctx context.Context,
	channelID string,
) (mo.Option[*models.WebhookConfig], error) {
	if channelID == "" {
		return mo.None[*models.WebhookConfig](), fmt.Errorf("channel ID cannot be empty")
	}
	return s.webhookConfigsRepo.GetWebhookConfig(ctx, channelID), nil
}

func (s *WebhookConfigsService) GetActiveWebhookURL(ctx context.Context, channelID string) (mo.Option[string], error) {
	if channelID == "" {
		return mo.None[string](), fmt.Errorf("channel ID cannot be empty")
	}
	return s.webhookConfigsRepo.GetActiveWebhookURL(ctx, channelID), nil
}

func (s *WebhookConfigsService) RemoveChannelWebhook(ctx context.Context, channelID string) (bool, error) {
	log.Printf("📋 Starting to remove webhook for channel %s", channelID)
	if channelID == "" {
		return false, fmt.Errorf("channel ID cannot be empty")
	}

	removed, err := s.webhookConfigsRepo.DeleteWebhookConfig(ctx, channelID)
	if err != nil {
		log.Printf("❌ Failed to remove webhook for channel %s: %v", channelID, err)
		return false, fmt.Errorf("failed to remove webhook config: %w", err)
	}
	if !removed {
		log.Printf("📋 Completed successfully - no webhook configured for channel %s", channelID)
		return false, nil
	}

	log.Printf("📋 Completed successfully - removed webhook for channel %s", channelID)
	return true, nil
}

// ToggleChannelWebhook flips the active flag and returns the config as it is after the change
func (s *WebhookConfigsService) ToggleChannelWebhook(
	ctx context.Context,
	channelID string,
) (mo.Option[*models.WebhookConfig], error) {
	log.Printf("📋 Starting to toggle webhook for channel %s", channelID)
	if channelID == "" {
		return mo.None[*models.WebhookConfig](), fmt.Errorf("channel ID cannot be empty")
	}

	toggled, err := s.webhookConfigsRepo.ToggleWebhookConfig(ctx, channelID)
	if err != nil {
		log.Printf("❌ Failed to toggle webhook for channel %s: %v", channelID, err)
		return mo.None[*models.WebhookConfig](), fmt.Errorf("failed to toggle webhook config: %w", err)
	}
	if !toggled {
		log.Printf("📋 Completed successfully - no webhook configured for channel %s", channelID)
		return mo.None[*models.WebhookConfig](), nil
	}

	maybeConfig := s.webhookConfigsRepo.GetWebhookConfig(ctx, channelID)
	if !maybeConfig.IsPresent() {
		return mo.None[*models.WebhookConfig](), fmt.Errorf("webhook config for channel %s disappeared after toggle: %w",
			channelID, core.ErrNotFound)
	}

	log.Printf("📋 Completed successfully - webhook for channel %s is now active=%t", channelID, maybeConfig.MustGet().Active)
	return maybeConfig, nil
}

func (s *WebhookConfigsService) ListGuildWebhooks(ctx context.Context, guildID string) ([]*models.WebhookConfig, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild ID cannot be empty")
	}
	return s.webhookConfigsRepo.ListWebhookConfigsByGuild(ctx, guildID), nil
}
