package models

type CommandName string

const (
	CommandSetup  CommandName = "webhook-setup"
	CommandRemove CommandName = "webhook-remove"
	CommandStatus CommandName = "webhook-status"
	CommandList   CommandName = "webhook-list"
	CommandTest   CommandName = "webhook-test"
	CommandToggle CommandName = "webhook-toggle"
)

// CommandRequest is an administrative command invoked in a channel
type CommandRequest struct {
	Command   CommandName
	GuildID   string
	ChannelID string
	UserID    string
	// WebhookURL is only used by the setup command
	WebhookURL string
}

type CommandResultField struct {
	Name   string
	Value  string
	Inline bool
}

// CommandResult is the user-facing outcome of an administrative command
type CommandResult struct {
	Success bool
	Title   string
	Message string
	Fields  []CommandResultField
}
