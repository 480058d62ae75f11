package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"whatsapp-disparador/internal/birthday"
	"whatsapp-disparador/internal/config"
	"whatsapp-disparador/internal/handler"
	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/middleware"
	"whatsapp-disparador/internal/repository"
	"whatsapp-disparador/internal/service"
)

const (
	handoffCleanupInterval = time.Minute
	shutdownTimeout        = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return err
	}
	appLogger.Info("Starting disparador service")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	contactRepo := repository.NewContactRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	handoffRepo := repository.NewHandoffRepository(db)

	translator, err := i18n.New(cfg.Locale.Languages, appLogger)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	// Initialize WhatsApp service
	hub := service.NewInstanceHub()
	whatsappService, err := service.NewWhatsAppService(ctx, &cfg.WhatsApp, hub, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize WhatsApp service: %w", err)
	}
	defer whatsappService.Close()

	if err := whatsappService.Start(ctx); err != nil {
		// The instance can still be paired or refreshed over HTTP.
		appLogger.WithError(err).Warn("WhatsApp did not connect on startup")
	}

	secrets := config.NewSecrets(cfg.Secrets)
	identity := service.NewSupabaseIdentity(&cfg.Backend, secrets, appLogger)
	reporter := service.NewReporter(secrets, identity, birthday.RealClock{}, appLogger)
	portal := service.NewStripePortal(&cfg.Billing, identity, subscriptionRepo, secrets, appLogger)
	handoffs := service.NewHandoffService(handoffRepo, cfg.Storage.HandoffTTL, appLogger)
	campaigns := service.NewCampaignService(whatsappService, campaignRepo, subscriptionRepo, handoffs,
		cfg.Campaign.MaxMessagesPerSecond, appLogger)
	defer campaigns.Close()

	handlers := handler.Handlers{
		Health:       handler.NewHealthHandler(whatsappService, translator.Languages(), appLogger),
		Diagnostic:   handler.NewDiagnosticHandler(reporter, appLogger),
		Calendar:     handler.NewCalendarHandler(contactRepo, handoffs, translator, birthday.RealClock{}, appLogger),
		Handoff:      handler.NewHandoffHandler(handoffs, translator, appLogger),
		Contacts:     handler.NewContactsHandler(contactRepo, translator, appLogger),
		Campaign:     handler.NewCampaignHandler(campaigns, translator, appLogger),
		Instance:     handler.NewInstanceHandler(whatsappService, hub, translator, appLogger),
		Subscription: handler.NewSubscriptionHandler(portal, translator, appLogger),
	}
	authMiddleware := middleware.NewAuthMiddleware(identity, translator, appLogger)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.NewRouter(handlers, authMiddleware),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	server.RegisterOnShutdown(handlers.Instance.Shutdown)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("HTTP server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return handoffs.RunCleanup(gctx, handoffCleanupInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	appLogger.Info("Disparador service started",
		"address", server.Addr,
		"whatsapp_connected", whatsappService.Status().Connected(),
	)

	if err := g.Wait(); err != nil {
		appLogger.WithError(err).Error("Service stopped with error")
		return err
	}

	appLogger.Info("Server stopped gracefully")
	return nil
}
