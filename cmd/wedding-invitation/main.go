package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wedding-invitation/internal/config"
	"wedding-invitation/internal/guest"
	"wedding-invitation/internal/handler"
	"wedding-invitation/internal/logging"
	"wedding-invitation/internal/server"
	"wedding-invitation/internal/storage"
	"wedding-invitation/internal/whatsapp"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to create data directory")
	}

	policy := storage.RetryPolicy{MaxRetries: cfg.StoreMaxRetries, BaseDelay: cfg.StoreRetryDelay}
	guestStore := storage.NewGuestStore(cfg.DataDir, policy, log)
	settings := storage.NewSettingsStore(cfg.DataDir, policy, log)
	guests := guest.NewManager(guestStore, log)

	deps := handler.Deps{
		Config: cfg,
		Guests: guests,
		Themes: settings,
		Log:    log,
	}

	var wa *whatsapp.Service
	if cfg.WhatsAppEnabled {
		if err := os.MkdirAll(cfg.WhatsAppDataDir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.WhatsAppDataDir).Msg("Failed to create WhatsApp data directory")
		}
		wa, err = whatsapp.NewService(ctx, &whatsapp.Config{DataDir: cfg.WhatsAppDataDir, CountryCode: cfg.WhatsAppCountryCode}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize WhatsApp service")
		}
		deps.Messenger = wa
	}

	h, err := handler.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize handlers")
	}

	if wa != nil {
		wa.SetMessageHandler(h.HandleWhatsAppMessage)
		// Pairing blocks until the QR code is scanned, so it runs alongside the web server.
		go func() {
			log.Info().Msg("Connecting to WhatsApp")
			if err := wa.Connect(ctx); err != nil {
				log.Error().Err(err).Msg("WhatsApp connection failed, invitations cannot be sent")
			}
		}()
	}

	app := server.New(h, log)

	go func() {
		log.Info().
			Int("port", cfg.Port).
			Str("data_dir", cfg.DataDir).
			Str("guests", guestStore.Path()).
			Str("stats", guests.Stats().String()).
			Msg("Wedding invitation server listening")
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Error().Err(err).Msg("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	if wa != nil {
		wa.Disconnect()
	}
}
