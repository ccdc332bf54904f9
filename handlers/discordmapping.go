package handlers

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"webhookrelay/models"
)

// mapToDiscordMessage maps a Discord SDK message to our domain model.
// guildID is passed separately because messages fetched over REST omit it.
func (h *DiscordEventsHandler) mapToDiscordMessage(m *discordgo.Message, guildID string) (models.DiscordMessage, error) {
	if m.Author == nil {
		return models.DiscordMessage{}, fmt.Errorf("message %s has no author", m.ID)
	}

	channel, err := h.discordClient.GetChannel(m.ChannelID)
	if err != nil {
		return models.DiscordMessage{}, fmt.Errorf("failed to get channel info: %w", err)
	}

	var guild *models.DiscordGuild
	if guildID != "" {
		guild, err = h.discordClient.GetGuild(guildID)
		if err != nil {
			log.Printf("⚠️ Failed to get guild %s, sending it without a name: %v", guildID, err)
			guild = &models.DiscordGuild{ID: guildID}
		}
	}

	attachments := make([]models.DiscordAttachment, 0, len(m.Attachments))
	for _, attachment := range m.Attachments {
		attachments = append(attachments, models.DiscordAttachment{
			ID:          attachment.ID,
			Filename:    attachment.Filename,
			URL:         attachment.URL,
			ContentType: optionalString(attachment.ContentType),
		})
	}

	mentions := make([]models.DiscordUser, 0, len(m.Mentions))
	for _, mentionedUser := range m.Mentions {
		mentions = append(mentions, mapToDiscordUser(mentionedUser, nil))
	}

	var referencedMessageID *string
	if m.MessageReference != nil {
		referenceID := m.MessageReference.MessageID
		referencedMessageID = &referenceID
	}

	return models.DiscordMessage{
		ID:                  m.ID,
		Content:             m.Content,
		Author:              mapToDiscordUser(m.Author, m.Member),
		Channel:             *channel,
		Guild:               guild,
		Attachments:         attachments,
		Mentions:            mentions,
		ReferencedMessageID: referencedMessageID,
	}, nil
}

// mapToDiscordReaction fetches the reacted message and maps the event to our domain model
func (h *DiscordEventsHandler) mapToDiscordReaction(r *discordgo.MessageReactionAdd) (models.DiscordReaction, error) {
	sdkMessage, err := h.discordClient.GetMessage(r.ChannelID, r.MessageID)
	if err != nil {
		return models.DiscordReaction{}, fmt.Errorf("failed to get reacted message: %w", err)
	}
	if sdkMessage.ChannelID == "" {
		sdkMessage.ChannelID = r.ChannelID
	}

	message, err := h.mapToDiscordMessage(sdkMessage, r.GuildID)
	if err != nil {
		return models.DiscordReaction{}, err
	}

	var user *discordgo.User
	if r.Member != nil && r.Member.User != nil {
		user = r.Member.User
	} else {
		user, err = h.discordClient.GetUser(r.UserID)
		if err != nil {
			return models.DiscordReaction{}, fmt.Errorf("failed to get reacting user: %w", err)
		}
	}

	return models.DiscordReaction{
		Message: message,
		Emoji:   r.Emoji.MessageFormat(),
		Count:   reactionCount(sdkMessage, r.Emoji),
		User:    mapToDiscordUser(user, r.Member),
	}, nil
}

// mapToDiscordUser resolves the display name as server nickname, then global name, then username
func mapToDiscordUser(user *discordgo.User, member *discordgo.Member) models.DiscordUser {
	displayName := user.Username
	if user.GlobalName != "" {
		displayName = user.GlobalName
	}
	if member != nil && member.Nick != "" {
		displayName = member.Nick
	}

	var avatarURL *string
	if user.Avatar != "" {
		url := user.AvatarURL("")
		avatarURL = &url
	}

	return models.DiscordUser{
		ID:            user.ID,
		Username:      user.Username,
		Discriminator: user.Discriminator,
		DisplayName:   displayName,
		AvatarURL:     avatarURL,
		Bot:           user.Bot,
	}
}

// reactionCount returns the message's count for emoji, at least 1 since the event itself added one
func reactionCount(m *discordgo.Message, emoji discordgo.Emoji) int {
	for _, reaction := range m.Reactions {
		if reaction.Emoji != nil && reaction.Emoji.APIName() == emoji.APIName() && reaction.Count > 0 {
			return reaction.Count
		}
	}
	return 1
}

// buildCommandRequest extracts the command from an interaction.
// A non-nil result means the invocation is refused and should be answered with it.
func buildCommandRequest(i *discordgo.InteractionCreate) (models.CommandRequest, *models.CommandResult) {
	data := i.ApplicationCommandData()

	if i.GuildID == "" || i.Member == nil {
		return models.CommandRequest{}, &models.CommandResult{
			Title:   "Server only",
			Message: "Webhook commands can only be used inside a server.",
		}
	}
	if !hasWebhookAdminPermission(i.Member) {
		return models.CommandRequest{}, &models.CommandResult{
			Title:   "Missing permission",
			Message: "You need the Manage Webhooks or Administrator permission to use this command.",
		}
	}

	req := models.CommandRequest{
		Command:   models.CommandName(data.Name),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
	}
	if i.Member.User != nil {
		req.UserID = i.Member.User.ID
	}
	for _, option := range data.Options {
		if option.Name == "url" && option.Type == discordgo.ApplicationCommandOptionString {
			req.WebhookURL = option.StringValue()
		}
	}

	return req, nil
}

func hasWebhookAdminPermission(member *discordgo.Member) bool {
	return member.Permissions&int64(webhookAdminPermissions) != 0
}

func buildResultEmbed(result *models.CommandResult) *discordgo.MessageEmbed {
	color := embedColorFailure
	if result.Success {
		color = embedColorSuccess
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(result.Fields))
	for _, field := range result.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       result.Title,
		Description: result.Message,
		Color:       color,
		Fields:      fields,
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
