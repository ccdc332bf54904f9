package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"webhookrelay/core"
	"webhookrelay/models"
	"webhookrelay/services/webhookconfigs"
)

// maxListedWebhooks is the number of embed fields Discord accepts
const maxListedWebhooks = 25

// ExecuteCommand runs an administrative command and builds the user-facing result.
// It never returns nil; failures are reported through CommandResult.Success.
func (u *RelayUseCase) ExecuteCommand(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	log.Printf("📋 Starting to execute /%s for user %s in channel %s", req.Command, req.UserID, req.ChannelID)

	if req.GuildID == "" {
		return failure("Server only", "Webhook commands can only be used inside a server.")
	}

	var result *models.CommandResult
	switch req.Command {
	case models.CommandSetup:
		result = u.setupWebhook(ctx, req)
	case models.CommandRemove:
		result = u.removeWebhook(ctx, req)
	case models.CommandStatus:
		result = u.webhookStatus(ctx, req)
	case models.CommandList:
		result = u.listWebhooks(ctx, req)
	case models.CommandTest:
		result = u.testWebhook(ctx, req)
	case models.CommandToggle:
		result = u.toggleWebhook(ctx, req)
	default:
		result = failure("Unknown command", fmt.Sprintf("Command `%s` is not supported.", req.Command))
	}

	log.Printf("📋 Completed successfully - /%s in channel %s (success: %t)", req.Command, req.ChannelID, result.Success)
	return result
}

func (u *RelayUseCase) setupWebhook(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	if err := webhookconfigs.ValidateWebhookURL(req.WebhookURL); err != nil {
		log.Printf("⚠️ Rejected webhook setup for channel %s: %v", req.ChannelID, err)
		return failure("Invalid webhook URL", "The webhook URL must start with `http://` or `https://`.")
	}

	reachable := u.webhookClient.Probe(ctx, req.WebhookURL)

	config, err := u.webhookConfigsService.SetChannelWebhook(ctx, req.GuildID, req.ChannelID, req.WebhookURL)
	if err != nil {
		log.Printf("❌ Failed to save webhook for channel %s: %v", req.ChannelID, err)
		if errors.Is(err, core.ErrInvalidWebhookURL) {
			return failure("Invalid webhook URL", "The webhook URL must start with `http://` or `https://`.")
		}
		return failure("Setup failed", "The webhook could not be saved. Please try again later.")
	}

	fields := []models.CommandResultField{
		{Name: "Channel", Value: channelMention(config.ChannelID), Inline: true},
		{Name: "Reachable", Value: yesNo(reachable), Inline: true},
		{Name: "Webhook URL", Value: config.WebhookURL},
	}
	if !reachable {
		return &models.CommandResult{
			Success: true,
			Title:   "⚠️ Webhook saved but not responding",
			Message: "The webhook was saved, but it did not answer the test event with HTTP 200. " +
				"Events from this channel will still be sent to it.",
			Fields: fields,
		}
	}

	return &models.CommandResult{
		Success: true,
		Title:   "✅ Webhook configured",
		Message: "Messages and reactions in this channel will now be sent to the webhook.",
		Fields:  fields,
	}
}

func (u *RelayUseCase) removeWebhook(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	removed, err := u.webhookConfigsService.RemoveChannelWebhook(ctx, req.ChannelID)
	if err != nil {
		log.Printf("❌ Failed to remove webhook for channel %s: %v", req.ChannelID, err)
		return failure("Removal failed", "The webhook could not be removed. Please try again later.")
	}
	if !removed {
		return failure("No webhook configured", "This channel does not have a webhook to remove.")
	}

	return &models.CommandResult{
		Success: true,
		Title:   "🗑️ Webhook removed",
		Message: "Events from this channel will no longer be sent to a webhook.",
	}
}

func (u *RelayUseCase) webhookStatus(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	maybeConfig, err := u.webhookConfigsService.GetChannelWebhook(ctx, req.ChannelID)
	if err != nil {
		log.Printf("❌ Failed to get webhook for channel %s: %v", req.ChannelID, err)
		return failure("Status unavailable", "The webhook configuration could not be read.")
	}
	if !maybeConfig.IsPresent() {
		return failure("No webhook configured", "Use `/webhook-setup` to send this channel's events to a webhook.")
	}
	config := maybeConfig.MustGet()

	reachable := u.webhookClient.Probe(ctx, config.WebhookURL)

	return &models.CommandResult{
		Success: true,
		Title:   "📋 Webhook status",
		Fields: []models.CommandResultField{
			{Name: "State", Value: activeLabel(config.Active), Inline: true},
			{Name: "Reachable", Value: yesNo(reachable), Inline: true},
			{Name: "Configured", Value: formatCreatedAt(config.CreatedAt), Inline: true},
			{Name: "Webhook URL", Value: config.WebhookURL},
		},
	}
}

func (u *RelayUseCase) listWebhooks(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	configs, err := u.webhookConfigsService.ListGuildWebhooks(ctx, req.GuildID)
	if err != nil {
		log.Printf("❌ Failed to list webhooks for guild %s: %v", req.GuildID, err)
		return failure("List unavailable", "The webhook configuration could not be read.")
	}
	if len(configs) == 0 {
		return &models.CommandResult{
			Success: true,
			Title:   "📋 Configured webhooks",
			Message: "No channels in this server have a webhook configured.",
		}
	}

	fields := make([]models.CommandResultField, 0, min(len(configs), maxListedWebhooks))
	for _, config := range configs {
		if len(fields) == maxListedWebhooks {
			break
		}
		fields = append(fields, models.CommandResultField{
			Name:  channelMention(config.ChannelID),
			Value: fmt.Sprintf("%s\n%s", activeLabel(config.Active), config.WebhookURL),
		})
	}

	message := fmt.Sprintf("%d channel(s) have a webhook configured.", len(configs))
	if len(configs) > maxListedWebhooks {
		message += fmt.Sprintf(" Showing the first %d.", maxListedWebhooks)
	}

	return &models.CommandResult{
		Success: true,
		Title:   "📋 Configured webhooks",
		Message: message,
		Fields:  fields,
	}
}

func (u *RelayUseCase) testWebhook(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	maybeConfig, err := u.webhookConfigsService.GetChannelWebhook(ctx, req.ChannelID)
	if err != nil {
		log.Printf("❌ Failed to get webhook for channel %s: %v", req.ChannelID, err)
		return failure("Test unavailable", "The webhook configuration could not be read.")
	}
	if !maybeConfig.IsPresent() {
		return failure("No webhook configured", "Use `/webhook-setup` before testing.")
	}
	config := maybeConfig.MustGet()

	if !u.webhookClient.Probe(ctx, config.WebhookURL) {
		return failure("❌ Webhook test failed", "The webhook did not answer the test event with HTTP 200.")
	}

	return &models.CommandResult{
		Success: true,
		Title:   "✅ Webhook test succeeded",
		Message: "The webhook answered the test event with HTTP 200.",
	}
}

func (u *RelayUseCase) toggleWebhook(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	maybeConfig, err := u.webhookConfigsService.ToggleChannelWebhook(ctx, req.ChannelID)
	if err != nil {
		log.Printf("❌ Failed to toggle webhook for channel %s: %v", req.ChannelID, err)
		return failure("Toggle failed", "The webhook could not be updated. Please try again later.")
	}
	if !maybeConfig.IsPresent() {
		return failure("No webhook configured", "This channel does not have a webhook to toggle.")
	}
	config := maybeConfig.MustGet()

	if config.Active {
		return &models.CommandResult{
			Success: true,
			Title:   "▶️ Webhook activated",
			Message: "Events from this channel will be sent to the webhook again.",
		}
	}
	return &models.CommandResult{
		Success: true,
		Title:   "⏸️ Webhook deactivated",
		Message: "Events from this channel are paused. The configuration is kept.",
	}
}

func failure(title, message string) *models.CommandResult {
	return &models.CommandResult{Success: false, Title: title, Message: message}
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func formatCreatedAt(createdAt time.Time) string {
	if createdAt.IsZero() {
		return "Unknown"
	}
	// Discord renders <t:unix:R> as a relative time in the reader's locale
	return fmt.Sprintf("<t:%d:R>", createdAt.Unix())
}
