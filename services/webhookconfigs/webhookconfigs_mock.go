package webhookconfigs

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"webhookrelay/models"
)

type MockWebhookConfigsService struct {
	mock.Mock
}

func (m *MockWebhookConfigsService) SetChannelWebhook(
	ctx context.Context,
	guildID, channelID, webhookURL string,
) (*models.WebhookConfig, error) {
	args := m.Called(ctx, guildID, channelID, webhookURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookConfig), args.Error(1)
}

func (m *MockWebhookConfigsService) GetChannelWebhook(
	ctx context.Context,
	channelID string,
) (mo.Option[*models.WebhookConfig], error) {
	args := m.Called(ctx, channelID)
	return args.Get(0).(mo.Option[*models.WebhookConfig]), args.Error(1)
}

func (m *MockWebhookConfigsService) GetActiveWebhookURL(ctx context.Context, channelID string) (mo.Option[string], error) {
	args := m.Called(ctx, channelID)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockWebhookConfigsService) RemoveChannelWebhook(ctx context.Context, channelID string) (bool, error) {
	args := m.Called(ctx, channelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookConfigsService) ToggleChannelWebhook(
	ctx context.Context,
	channelID string,
) (mo.Option[*models.WebhookConfig], error) {
	args := m.Called(ctx, channelID)
	return args.Get(0).(mo.Option[*models.WebhookConfig]), args.Error(1)
}

func (m *MockWebhookConfigsService) ListGuildWebhooks(
	ctx context.Context,
	guildID string,
) ([]*models.WebhookConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WebhookConfig), args.Error(1)
}
