package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/gammazero/workerpool"

	"webhookrelay/clients"
	"webhookrelay/middleware"
	"webhookrelay/models"
	"webhookrelay/usecases"
)

const (
	embedColorSuccess = 0x2ECC71
	embedColorFailure = 0xE74C3C
)

// webhookAdminPermissions are the permissions that allow running webhook commands
const webhookAdminPermissions = discordgo.PermissionManageWebhooks | discordgo.PermissionAdministrator

type DiscordEventsHandler struct {
	discordSDKClient *discordgo.Session
	discordClient    clients.DiscordClient
	relayUseCase     usecases.RelayUseCaseInterface
	alerts           *middleware.ErrorAlertMiddleware
	pool             *workerpool.WorkerPool
}

func NewDiscordEventsHandler(
	session *discordgo.Session,
	discordClient clients.DiscordClient,
	relayUseCase usecases.RelayUseCaseInterface,
	alerts *middleware.ErrorAlertMiddleware,
) *DiscordEventsHandler {
	handler := &DiscordEventsHandler{
		discordSDKClient: session,
		discordClient:    discordClient,
		relayUseCase:     relayUseCase,
		alerts:           alerts,
		pool:             workerpool.New(1), // Sequential processing
	}

	// Register event handlers
	session.AddHandler(handler.handleReady)
	session.AddHandler(handler.handleMessageCreatedEvent)
	session.AddHandler(handler.handleReactionAddedEvent)
	session.AddHandler(handler.handleInteractionCreatedEvent)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsDirectMessageReactions |
		discordgo.IntentsMessageContent

	return handler
}

// StartBot opens the Discord connection and starts listening for events
func (h *DiscordEventsHandler) StartBot() error {
	if err := h.discordSDKClient.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	log.Printf("🤖 Discord bot is now running and listening for events")
	return nil
}

// StopBot closes the Discord connection and waits for queued events to finish
func (h *DiscordEventsHandler) StopBot() {
	if err := h.discordSDKClient.Close(); err != nil {
		log.Printf("⚠️ Failed to close Discord session: %v", err)
	}
	h.pool.StopWait()
	log.Printf("🤖 Discord bot stopped")
}

// SlashCommands returns the administrative commands registered with Discord
func SlashCommands() []*discordgo.ApplicationCommand {
	adminPermissions := int64(webhookAdminPermissions)
	dmPermission := false

	command := func(name models.CommandName, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
		return &discordgo.ApplicationCommand{
			Name:                     string(name),
			Description:              description,
			DefaultMemberPermissions: &adminPermissions,
			DMPermission:             &dmPermission,
			Options:                  options,
		}
	}

	return []*discordgo.ApplicationCommand{
		command(models.CommandSetup, "Send this channel's messages and reactions to a webhook",
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "Webhook URL (http:// or https://)",
				Required:    true,
			},
		),
		command(models.CommandRemove, "Stop sending this channel's events to a webhook"),
		command(models.CommandStatus, "Show this channel's webhook and check that it responds"),
		command(models.CommandList, "List the webhooks configured in this server"),
		command(models.CommandTest, "Send a test event to this channel's webhook"),
		command(models.CommandToggle, "Pause or resume this channel's webhook"),
	}
}

func (h *DiscordEventsHandler) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	defer h.alerts.RecoverAndAlert("Discord ready handler")

	log.Printf("🤖 Logged in as %s (%s) in %d guild(s)", r.User.Username, r.User.ID, len(r.Guilds))

	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}

	registered, err := s.ApplicationCommandBulkOverwrite(appID, "", SlashCommands())
	if err != nil {
		log.Printf("❌ Failed to register slash commands: %v", err)
		h.alerts.AlertOnError(err, "Discord slash command registration")
		return
	}
	log.Printf("✅ Registered %d slash command(s)", len(registered))
}

// handleMessageCreatedEvent handles incoming Discord messages
func (h *DiscordEventsHandler) handleMessageCreatedEvent(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer h.alerts.RecoverAndAlert("Discord message handler")

	if m.Author == nil || h.isOwnUser(s, m.Author.ID) {
		return
	}

	log.Printf("📨 Discord message received from %s in guild %s, channel %s",
		m.Author.Username, m.GuildID, m.ChannelID)

	message := m.Message
	h.pool.Submit(h.alerts.WrapTask("relay message "+message.ID, func() error {
		return h.relayMessage(context.Background(), message)
	}))
}

// handleReactionAddedEvent handles when a reaction is added to a message
func (h *DiscordEventsHandler) handleReactionAddedEvent(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	defer h.alerts.RecoverAndAlert("Discord reaction handler")

	if h.isOwnUser(s, r.UserID) {
		return
	}

	log.Printf("🤖 Discord reaction %s added by user %s on message %s in guild %s",
		r.Emoji.Name, r.UserID, r.MessageID, r.GuildID)

	reaction := r
	h.pool.Submit(h.alerts.WrapTask("relay reaction on message "+r.MessageID, func() error {
		return h.relayReaction(context.Background(), reaction)
	}))
}

func (h *DiscordEventsHandler) handleInteractionCreatedEvent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer h.alerts.RecoverAndAlert("Discord interaction handler")

	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	req, denied := buildCommandRequest(i)
	if denied != nil {
		h.respondImmediately(s, i.Interaction, denied)
		return
	}

	log.Printf("📨 Slash command /%s from user %s in guild %s, channel %s",
		req.Command, req.UserID, req.GuildID, req.ChannelID)

	// Acknowledge now; the queued command may take longer than Discord's response window
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Printf("❌ Failed to acknowledge /%s: %v", req.Command, err)
		return
	}

	interaction := i.Interaction
	h.pool.Submit(h.alerts.WrapTask("command /"+string(req.Command), func() error {
		result := h.executeCommand(context.Background(), req)
		_, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{buildResultEmbed(result)},
		})
		if err != nil {
			return fmt.Errorf("failed to send /%s response: %w", req.Command, err)
		}
		return nil
	}))
}

// executeCommand always yields a result so the deferred interaction gets an answer
func (h *DiscordEventsHandler) executeCommand(ctx context.Context, req models.CommandRequest) (result *models.CommandResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Panic while executing /%s: %v", req.Command, r)
			h.alerts.AlertOnError(fmt.Errorf("panic: %v", r), "command /"+string(req.Command))
			result = genericFailure()
		}
	}()

	result = h.relayUseCase.ExecuteCommand(ctx, req)
	if result == nil {
		return genericFailure()
	}
	return result
}

func (h *DiscordEventsHandler) respondImmediately(s *discordgo.Session, interaction *discordgo.Interaction, result *models.CommandResult) {
	err := s.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{buildResultEmbed(result)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("❌ Failed to respond to interaction: %v", err)
	}
}

func (h *DiscordEventsHandler) relayMessage(ctx context.Context, m *discordgo.Message) error {
	message, err := h.mapToDiscordMessage(m, m.GuildID)
	if err != nil {
		return fmt.Errorf("failed to map Discord message %s: %w", m.ID, err)
	}
	return h.relayUseCase.ProcessMessageEvent(ctx, message)
}

func (h *DiscordEventsHandler) relayReaction(ctx context.Context, r *discordgo.MessageReactionAdd) error {
	reaction, err := h.mapToDiscordReaction(r)
	if err != nil {
		return fmt.Errorf("failed to map Discord reaction on message %s: %w", r.MessageID, err)
	}
	return h.relayUseCase.ProcessReactionEvent(ctx, reaction)
}

func (h *DiscordEventsHandler) isOwnUser(s *discordgo.Session, userID string) bool {
	return s != nil && s.State != nil && s.State.User != nil && s.State.User.ID == userID
}

func genericFailure() *models.CommandResult {
	return &models.CommandResult{
		Success: false,
		Title:   "Something went wrong",
		Message: "The command could not be completed. Please try again later.",
	}
}
