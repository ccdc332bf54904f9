package models

// DiscordUser is the identity data of a message author, mentioned user or reacting user
type DiscordUser struct {
	ID            string
	Username      string
	Discriminator string
	DisplayName   string
	// AvatarURL is nil when the user has no custom avatar
	AvatarURL *string
	Bot       bool
}

type DiscordAttachment struct {
	ID       string
	Filename string
	URL      string
	// ContentType is the declared media type, nil when Discord did not report one
	ContentType *string
}

type DiscordChannel struct {
	ID      string
	Name    string
	Type    string
	GuildID string
}

type DiscordGuild struct {
	ID   string
	Name string
}

// DiscordMessage is a platform message mapped from the SDK event
type DiscordMessage struct {
	ID      string
	Content string
	Author  DiscordUser
	Channel DiscordChannel
	// Guild is nil for direct messages
	Guild       *DiscordGuild
	Attachments []DiscordAttachment
	Mentions    []DiscordUser
	// ReferencedMessageID is set when the message replies to another message
	ReferencedMessageID *string
}

// DiscordReaction is a reaction added to Message by User
type DiscordReaction struct {
	Message DiscordMessage
	Emoji   string
	Count   int
	User    DiscordUser
}
