package relay

import (
	"context"
	"fmt"
	"log"
	"time"

	"webhookrelay/appctx"
	"webhookrelay/clients"
	"webhookrelay/core"
	"webhookrelay/events"
	"webhookrelay/models"
	"webhookrelay/services"
)

// RelayUseCase forwards Discord events to the webhook configured for their channel
// and runs the administrative webhook commands
type RelayUseCase struct {
	webhookConfigsService services.WebhookConfigsService
	webhookClient         clients.WebhookClient
	now                   func() time.Time
}

func NewRelayUseCase(
	webhookConfigsService services.WebhookConfigsService,
	webhookClient clients.WebhookClient,
) *RelayUseCase {
	return &RelayUseCase{
		webhookConfigsService: webhookConfigsService,
		webhookClient:         webhookClient,
		now:                   time.Now,
	}
}

func (u *RelayUseCase) ProcessMessageEvent(ctx context.Context, msg models.DiscordMessage) error {
	log.Printf("📋 Starting to process message %s from %s in channel %s",
		msg.ID, msg.Author.Username, msg.Channel.ID)

	event := events.NormalizeMessage(msg, models.EventTypeMessageCreate, u.now())
	if err := u.relay(ctx, event, msg.Channel.ID); err != nil {
		return fmt.Errorf("failed to relay message %s: %w", msg.ID, err)
	}

	log.Printf("📋 Completed successfully - processed message %s", msg.ID)
	return nil
}

func (u *RelayUseCase) ProcessReactionEvent(ctx context.Context, reaction models.DiscordReaction) error {
	log.Printf("📋 Starting to process reaction %s by %s on message %s in channel %s",
		reaction.Emoji, reaction.User.Username, reaction.Message.ID, reaction.Message.Channel.ID)

	event, err := events.NormalizeReaction(reaction, u.now())
	if err != nil {
		return fmt.Errorf("failed to normalize reaction on message %s: %w", reaction.Message.ID, err)
	}
	if err := u.relay(ctx, event, reaction.Message.Channel.ID); err != nil {
		return fmt.Errorf("failed to relay reaction on message %s: %w", reaction.Message.ID, err)
	}

	log.Printf("📋 Completed successfully - processed reaction on message %s", reaction.Message.ID)
	return nil
}

// relay resolves the channel's active webhook and delivers event to it once.
// A channel without an active webhook is skipped. Delivery outcomes are logged, not returned.
func (u *RelayUseCase) relay(ctx context.Context, event *models.CanonicalEvent, channelID string) error {
	maybeURL, err := u.webhookConfigsService.GetActiveWebhookURL(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to resolve webhook for channel %s: %w", channelID, err)
	}
	if !maybeURL.IsPresent() {
		log.Printf("📋 No active webhook for channel %s - skipping %s event", channelID, event.EventType)
		return nil
	}
	webhookURL := maybeURL.MustGet()

	deliveryID := core.NewID("dlv")
	ctx = appctx.SetDeliveryID(ctx, deliveryID)

	log.Printf("📨 Delivering %s event %s to webhook for channel %s", event.EventType, deliveryID, channelID)
	result := u.webhookClient.Deliver(ctx, event, webhookURL)
	switch result.Status {
	case models.DeliveryStatusDelivered:
		log.Printf("✅ Delivered %s event %s for channel %s", event.EventType, deliveryID, channelID)
	case models.DeliveryStatusRejected:
		log.Printf("❌ Webhook for channel %s rejected delivery %s: %s", channelID, deliveryID, result)
	default:
		log.Printf("❌ Delivery %s for channel %s %s", deliveryID, channelID, result)
	}

	return nil
}
