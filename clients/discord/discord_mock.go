package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"

	"webhookrelay/models"
)

// MockDiscordClient implements the clients.DiscordClient interface for testing
type MockDiscordClient struct {
	mock.Mock
}

func (m *MockDiscordClient) GetChannel(channelID string) (*models.DiscordChannel, error) {
	args := m.Called(channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiscordChannel), args.Error(1)
}

func (m *MockDiscordClient) GetGuild(guildID string) (*models.DiscordGuild, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiscordGuild), args.Error(1)
}

// GetMessage mocks fetching a message by channel and message ID
func (m *MockDiscordClient) GetMessage(channelID, messageID string) (*discordgo.Message, error) {
	args := m.Called(channelID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *MockDiscordClient) GetUser(userID string) (*discordgo.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.User), args.Error(1)
}
