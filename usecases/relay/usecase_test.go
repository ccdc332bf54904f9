package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"webhookrelay/appctx"
	"webhookrelay/clients/webhook"
	"webhookrelay/core"
	"webhookrelay/models"
	"webhookrelay/services/webhookconfigs"
	"webhookrelay/usecases"
)

var _ usecases.RelayUseCaseInterface = (*RelayUseCase)(nil)
var _ usecases.RelayUseCaseInterface = (*MockRelayUseCase)(nil)

const (
	testGuildID    = "900"
	testChannelID  = "100"
	testWebhookURL = "https://n8n.example.com/webhook/abc"
)

func newTestUseCase() (*RelayUseCase, *webhookconfigs.MockWebhookConfigsService, *webhook.MockWebhookClient) {
	configsService := &webhookconfigs.MockWebhookConfigsService{}
	webhookClient := &webhook.MockWebhookClient{}
	useCase := NewRelayUseCase(configsService, webhookClient)
	useCase.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return useCase, configsService, webhookClient
}

func testMessage() models.DiscordMessage {
	guild := &models.DiscordGuild{ID: testGuildID, Name: "Guild"}
	return models.DiscordMessage{
		ID:      "555",
		Content: "check https://example.com",
		Author:  models.DiscordUser{ID: "1", Username: "alice", Discriminator: "0", DisplayName: "Alice"},
		Channel: models.DiscordChannel{ID: testChannelID, Name: "general", Type: "text", GuildID: testGuildID},
		Guild:   guild,
	}
}

func TestRelayUseCase_ProcessMessageEvent(t *testing.T) {
	t.Run("delivers to the active webhook", func(t *testing.T) {
		useCase, configsService, webhookClient := newTestUseCase()
		ctx := context.Background()

		configsService.On("GetActiveWebhookURL", ctx, testChannelID).Return(mo.Some(testWebhookURL), nil)
		webhookClient.On("Deliver", mock.Anything, mock.MatchedBy(func(event *models.CanonicalEvent) bool {
			return event.EventType == models.EventTypeMessageCreate &&
				event.MessageID == "555" &&
				event.Content.Type == models.ContentTypeLink &&
				event.Timestamp == 1700000000000
		}), testWebhookURL).Run(func(args mock.Arguments) {
			deliveryCtx := args.Get(0).(context.Context)
			deliveryID, ok := appctx.GetDeliveryID(deliveryCtx)
			assert.True(t, ok)
			assert.True(t, core.IsValidID(deliveryID))
		}).Return(models.DeliveryResult{Status: models.DeliveryStatusDelivered})

		err := useCase.ProcessMessageEvent(ctx, testMessage())

		require.NoError(t, err)
		configsService.AssertExpectations(t)
		webhookClient.AssertExpectations(t)
	})

	t.Run("skips channels without an active webhook", func(t *testing.T) {
		useCase, configsService, webhookClient := newTestUseCase()
		ctx := context.Background()

		configsService.On("GetActiveWebhookURL", ctx, testChannelID).Return(mo.None[string](), nil)

		err := useCase.ProcessMessageEvent(ctx, testMessage())

		require.NoError(t, err)
		webhookClient.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delivery failures are not returned", func(t *testing.T) {
		useCase, configsService, webhookClient := newTestUseCase()
		ctx := context.Background()

		configsService.On("GetActiveWebhookURL", ctx, testChannelID).Return(mo.Some(testWebhookURL), nil)
		webhookClient.On("Deliver", mock.Anything, mock.Anything, testWebhookURL).
			Return(models.DeliveryResult{Status: models.DeliveryStatusFailed, Err: fmt.Errorf("connection refused")}).
			Once()

		err := useCase.ProcessMessageEvent(ctx, testMessage())

		require.NoError(t, err)
		webhookClient.AssertNumberOfCalls(t, "Deliver", 1)
	})

	t.Run("lookup errors are returned", func(t *testing.T) {
		useCase, configsService, webhookClient := newTestUseCase()
		ctx := context.Background()

		configsService.On("GetActiveWebhookURL", ctx, testChannelID).
			Return(mo.None[string](), errors.New("channel ID cannot be empty"))

		err := useCase.ProcessMessageEvent(ctx, testMessage())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to relay message 555")
		webhookClient.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRelayUseCase_ProcessReactionEvent(t *testing.T) {
	useCase, configsService, webhookClient := newTestUseCase()
	ctx := context.Background()
	reaction := models.DiscordReaction{
		Message: testMessage(),
		Emoji:   "🔥",
		Count:   2,
		User:    models.DiscordUser{ID: "7", Username: "bob", DisplayName: "Bob"},
	}

	configsService.On("GetActiveWebhookURL", ctx, testChannelID).Return(mo.Some(testWebhookURL), nil)
	webhookClient.On("Deliver", mock.Anything, mock.MatchedBy(func(event *models.CanonicalEvent) bool {
		if event.EventType != models.EventTypeReactionAdd {
			return false
		}
		var ext models.ReactionExtension
		if err := json.Unmarshal(event.Extensions["reaction"], &ext); err != nil {
			return false
		}
		return ext.Emoji == "🔥" && ext.Count == 2 && event.Extensions["user"] != nil
	}), testWebhookURL).Return(models.DeliveryResult{Status: models.DeliveryStatusRejected, StatusCode: 404})

	err := useCase.ProcessReactionEvent(ctx, reaction)

	require.NoError(t, err)
	webhookClient.AssertExpectations(t)
}
