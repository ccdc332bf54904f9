package webhook

import (
	"context"

	"github.com/stretchr/testify/mock"

	"webhookrelay/models"
)

// MockWebhookClient implements the clients.WebhookClient interface for testing
type MockWebhookClient struct {
	mock.Mock
}

func (m *MockWebhookClient) Deliver(
	ctx context.Context,
	event *models.CanonicalEvent,
	webhookURL string,
) models.DeliveryResult {
	args := m.Called(ctx, event, webhookURL)
	return args.Get(0).(models.DeliveryResult)
}

func (m *MockWebhookClient) Probe(ctx context.Context, webhookURL string) bool {
	args := m.Called(ctx, webhookURL)
	return args.Bool(0)
}
