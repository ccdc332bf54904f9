package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/jessevdk/go-flags"

	"webhookrelay/clients/discord"
	"webhookrelay/clients/webhook"
	"webhookrelay/config"
	"webhookrelay/db"
	"webhookrelay/handlers"
	"webhookrelay/middleware"
	"webhookrelay/services/webhookconfigs"
	"webhookrelay/usecases/relay"
)

type Options struct {
	DBFile string `long:"db-file" description:"Path of the webhook configuration file (overrides WEBHOOKS_DB_FILE)"`
	Port   string `long:"port" description:"Port for the health endpoint (overrides PORT)"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if opts.DBFile != "" {
		cfg.WebhooksDBFile = opts.DBFile
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackConfig.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "webhookrelay",
		LogsURL:     cfg.ServerLogsURL,
	})
	defer alertMiddleware.Wait()

	webhookConfigsRepo, err := db.NewJSONWebhookConfigsRepository(cfg.WebhooksDBFile)
	if err != nil {
		return fmt.Errorf("failed to open webhook store: %w", err)
	}
	log.Printf("📋 Using webhook store %s", webhookConfigsRepo.FilePath())

	webhookConfigsService := webhookconfigs.NewWebhookConfigsService(webhookConfigsRepo)
	webhookClient := webhook.NewWebhookClient(
		&http.Client{},
		cfg.WebhookConfig.DeliveryTimeout,
		cfg.WebhookConfig.ProbeTimeout,
	)
	relayUseCase := relay.NewRelayUseCase(webhookConfigsService, webhookClient)

	session, err := discordgo.New("Bot " + cfg.DiscordConfig.BotToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	discordClient := discord.NewDiscordClient(session)
	discordHandler := handlers.NewDiscordEventsHandler(session, discordClient, relayUseCase, alertMiddleware)

	if err := discordHandler.StartBot(); err != nil {
		return err
	}
	defer discordHandler.StopBot()

	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(router),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
