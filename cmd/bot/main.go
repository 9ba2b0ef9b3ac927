package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/suspectuso/gym-storefront/internal/catalog"
	"github.com/suspectuso/gym-storefront/internal/chapa"
	"github.com/suspectuso/gym-storefront/internal/config"
	"github.com/suspectuso/gym-storefront/internal/purchase"
	"github.com/suspectuso/gym-storefront/internal/storage"
	"github.com/suspectuso/gym-storefront/internal/telegram"
	"github.com/suspectuso/gym-storefront/internal/webhook"
)

func main() {
	// Setup logger
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	// Load config
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := storage.Open(connectCtx, cfg.DatabaseURL)
	connectCancel()
	if err != nil {
		log.Error("init storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("close storage", "error", err)
		}
	}()
	log.Info("storage initialized")

	// Initialize Chapa client
	gateway := chapa.NewClient(cfg.ChapaBaseURL, cfg.ChapaSecretKey)
	log.Info("chapa client initialized", "base_url", cfg.ChapaBaseURL)

	// Initialize purchase flow
	states := purchase.NewTracker()
	flow := purchase.NewController(
		catalog.Default(),
		store,
		gateway,
		purchase.Settings{
			Currency:    cfg.Currency,
			CallbackURL: cfg.ChapaCallbackURL,
			ReturnURL:   cfg.ReturnURL(),
			EmailDomain: cfg.PayerEmailDomain,
		},
		states,
		log,
	)

	// Initialize telegram bot
	bot, err := telegram.New(cfg, flow, log)
	if err != nil {
		log.Error("init telegram bot", "error", err)
		os.Exit(1)
	}
	log.Info("telegram bot initialized")

	// Start webhook server
	callbacks := purchase.NewCallbackHandler(store, states, bot, log)
	webhookServer := webhook.NewServer(callbacks, cfg.BusinessName, log)
	webhookDone := make(chan struct{})
	go func() {
		defer close(webhookDone)
		if err := webhookServer.Start(ctx, cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("webhook server", "error", err)
			cancel()
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info("shutting down...")
		cancel()
	}()

	// Start bot polling
	log.Info("starting bot polling...")
	bot.Start(ctx)

	// Callbacks still in flight need the store, which closes on return
	cancel()
	<-webhookDone
}
