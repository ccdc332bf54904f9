package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"webhookrelay/models"
)

// channelTypeNames uses the lowercase names bots built on discord.py report for channel types
var channelTypeNames = map[discordgo.ChannelType]string{
	discordgo.ChannelTypeGuildText:          "text",
	discordgo.ChannelTypeDM:                 "private",
	discordgo.ChannelTypeGuildVoice:         "voice",
	discordgo.ChannelTypeGroupDM:            "group",
	discordgo.ChannelTypeGuildCategory:      "category",
	discordgo.ChannelTypeGuildNews:          "news",
	discordgo.ChannelTypeGuildNewsThread:    "news_thread",
	discordgo.ChannelTypeGuildPublicThread:  "public_thread",
	discordgo.ChannelTypeGuildPrivateThread: "private_thread",
	discordgo.ChannelTypeGuildStageVoice:    "stage_voice",
	discordgo.ChannelType(14):               "directory",
	discordgo.ChannelTypeGuildForum:         "forum",
	discordgo.ChannelType(16):               "media",
}

// ChannelTypeName returns the payload name of a Discord channel type
func ChannelTypeName(channelType discordgo.ChannelType) string {
	if name, ok := channelTypeNames[channelType]; ok {
		return name
	}
	return "unknown"
}

// DiscordClient implements the clients.DiscordClient interface.
// Lookups hit the gateway state cache first and fall back to the REST API.
type DiscordClient struct {
	session *discordgo.Session
}

func NewDiscordClient(session *discordgo.Session) *DiscordClient {
	return &DiscordClient{session: session}
}

func (c *DiscordClient) GetChannel(channelID string) (*models.DiscordChannel, error) {
	channel, err := c.lookupChannel(channelID)
	if err != nil {
		return nil, err
	}

	return &models.DiscordChannel{
		ID:      channel.ID,
		Name:    channel.Name,
		Type:    ChannelTypeName(channel.Type),
		GuildID: channel.GuildID,
	}, nil
}

func (c *DiscordClient) GetGuild(guildID string) (*models.DiscordGuild, error) {
	if c.session.State != nil {
		if guild, err := c.session.State.Guild(guildID); err == nil {
			return &models.DiscordGuild{ID: guild.ID, Name: guild.Name}, nil
		}
	}

	guild, err := c.session.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	if guild == nil {
		return nil, fmt.Errorf("guild %s not found", guildID)
	}

	return &models.DiscordGuild{ID: guild.ID, Name: guild.Name}, nil
}

func (c *DiscordClient) GetMessage(channelID, messageID string) (*discordgo.Message, error) {
	if c.session.State != nil {
		if message, err := c.session.State.Message(channelID, messageID); err == nil {
			return message, nil
		}
	}

	message, err := c.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s in channel %s: %w", messageID, channelID, err)
	}

	return message, nil
}

func (c *DiscordClient) GetUser(userID string) (*discordgo.User, error) {
	user, err := c.session.User(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}

	return user, nil
}

func (c *DiscordClient) lookupChannel(channelID string) (*discordgo.Channel, error) {
	if c.session.State != nil {
		if channel, err := c.session.State.Channel(channelID); err == nil {
			return channel, nil
		}
	}

	channel, err := c.session.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	if channel == nil {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}

	return channel, nil
}
