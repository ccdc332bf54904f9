package usecases

import (
	"context"

	"webhookrelay/models"
)

// RelayUseCaseInterface defines the interface for relay use case operations
type RelayUseCaseInterface interface {
	ProcessMessageEvent(ctx context.Context, msg models.DiscordMessage) error
	ProcessReactionEvent(ctx context.Context, reaction models.DiscordReaction) error
	ExecuteCommand(ctx context.Context, req models.CommandRequest) *models.CommandResult
}
