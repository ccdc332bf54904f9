package relay

import (
	"context"

	"github.com/stretchr/testify/mock"

	"webhookrelay/models"
)

// MockRelayUseCase is a mock implementation of the RelayUseCase
type MockRelayUseCase struct {
	mock.Mock
}

func (m *MockRelayUseCase) ProcessMessageEvent(ctx context.Context, msg models.DiscordMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockRelayUseCase) ProcessReactionEvent(ctx context.Context, reaction models.DiscordReaction) error {
	args := m.Called(ctx, reaction)
	return args.Error(0)
}

func (m *MockRelayUseCase) ExecuteCommand(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.CommandResult)
}
