// Package events turns Discord messages and reactions into the canonical webhook payload.
// Everything here is pure: the only input besides the event is the capture time.
package events

import (
	"fmt"
	"strings"
	"time"

	"webhookrelay/models"
)

const (
	ProbeText          = "Test message from the Discord webhook relay"
	ProbeAuthorID      = "0"
	ProbeAuthorName    = "webhook-test"
	ProbeDiscriminator = "0000"
	ProbeDisplayName   = "Webhook Test"
	ProbeChannelName   = "webhook-test"
	ProbeMessageID     = "0"
)

// DetermineContentType classifies a message. First match wins:
// first attachment's media type, then reply, then any "http" substring, then text.
func DetermineContentType(msg models.DiscordMessage) models.ContentType {
	if len(msg.Attachments) > 0 {
		contentType := msg.Attachments[0].ContentType
		if contentType != nil {
			switch {
			case strings.HasPrefix(*contentType, "image/"):
				return models.ContentTypeImage
			case strings.HasPrefix(*contentType, "video/"):
				return models.ContentTypeVideo
			case strings.HasPrefix(*contentType, "audio/"):
				return models.ContentTypeAudio
			}
		}
		return models.ContentTypeFile
	}

	if msg.ReferencedMessageID != nil {
		return models.ContentTypeReply
	}

	if strings.Contains(msg.Content, "http") {
		return models.ContentTypeLink
	}

	return models.ContentTypeText
}

// NormalizeMessage projects msg onto the canonical event schema
func NormalizeMessage(msg models.DiscordMessage, eventType models.EventType, now time.Time) *models.CanonicalEvent {
	attachments := make([]models.EventAttachment, 0, len(msg.Attachments))
	for _, attachment := range msg.Attachments {
		attachments = append(attachments, models.EventAttachment{
			ID:          attachment.ID,
			Filename:    attachment.Filename,
			URL:         attachment.URL,
			ContentType: copyString(attachment.ContentType),
		})
	}

	mentions := make([]models.EventMention, 0, len(msg.Mentions))
	for _, user := range msg.Mentions {
		mentions = append(mentions, models.EventMention{
			ID:       user.ID,
			Username: user.Username,
		})
	}

	var guild models.EventGuild
	if msg.Guild != nil {
		guild.ID = copyString(&msg.Guild.ID)
		guild.Name = copyString(&msg.Guild.Name)
	}

	return &models.CanonicalEvent{
		EventType: eventType,
		Timestamp: now.UnixMilli(),
		Content: models.EventContent{
			Text: msg.Content,
			Type: DetermineContentType(msg),
		},
		Author: models.EventAuthor{
			ID:            msg.Author.ID,
			Username:      msg.Author.Username,
			Discriminator: msg.Author.Discriminator,
			DisplayName:   msg.Author.DisplayName,
			AvatarURL:     copyString(msg.Author.AvatarURL),
		},
		Channel: models.EventChannel{
			ID:   msg.Channel.ID,
			Name: msg.Channel.Name,
			Type: msg.Channel.Type,
		},
		Guild:       guild,
		MessageID:   msg.ID,
		Attachments: attachments,
		Mentions:    mentions,
		ReplyTo:     copyString(msg.ReferencedMessageID),
	}
}

// NormalizeReaction normalizes the reacted message and merges the reaction and user extensions
func NormalizeReaction(reaction models.DiscordReaction, now time.Time) (*models.CanonicalEvent, error) {
	event := NormalizeMessage(reaction.Message, models.EventTypeReactionAdd, now)

	if err := event.SetExtension("reaction", models.ReactionExtension{
		Emoji: reaction.Emoji,
		Count: reaction.Count,
	}); err != nil {
		return nil, fmt.Errorf("failed to attach reaction extension: %w", err)
	}

	if err := event.SetExtension("user", models.UserExtension{
		ID:          reaction.User.ID,
		Username:    reaction.User.Username,
		DisplayName: reaction.User.DisplayName,
	}); err != nil {
		return nil, fmt.Errorf("failed to attach user extension: %w", err)
	}

	return event, nil
}

// NewProbeEvent builds the synthetic event used to check that a webhook is reachable
func NewProbeEvent(now time.Time) *models.CanonicalEvent {
	return NormalizeMessage(models.DiscordMessage{
		ID:      ProbeMessageID,
		Content: ProbeText,
		Author: models.DiscordUser{
			ID:            ProbeAuthorID,
			Username:      ProbeAuthorName,
			Discriminator: ProbeDiscriminator,
			DisplayName:   ProbeDisplayName,
		},
		Channel: models.DiscordChannel{
			ID:   "0",
			Name: ProbeChannelName,
			Type: "text",
		},
	}, models.EventTypeTest, now)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	value := *s
	return &value
}
