package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"talenttrack/config"
	"talenttrack/internal/adapters/auth"
	"talenttrack/internal/adapters/calendly"
	"talenttrack/internal/adapters/email"
	httpdelivery "talenttrack/internal/delivery/http"
	"talenttrack/internal/delivery/http/controllers"
	"talenttrack/internal/delivery/http/middleware"
	"talenttrack/internal/repository/postgres"
	"talenttrack/internal/services"
)

const (
	serviceTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	appRepo := postgres.NewApplicationRepository(db)
	historyRepo := postgres.NewStatusHistoryRepository(db)
	interviewRepo := postgres.NewInterviewRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	settingsRepo := postgres.NewProviderSettingsRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()
	tokens := auth.NewJWT(cfg.JWTSecret)
	provider := calendly.NewClient(cfg.CalendlyBaseURL, &http.Client{Timeout: 15 * time.Second}, settingsRepo)

	// Services
	notifier := services.NewEmailNotificationDispatcher(mailer, renderer, logger)
	workflow := services.NewStatusWorkflowService(appRepo, historyRepo, adminRepo, notifier, logger, serviceTimeout)
	calendarSync := services.NewCalendarSyncService(appRepo, interviewRepo, provider, notifier, logger, serviceTimeout, cfg.SyncLookback)
	poller := services.NewSyncPoller(calendarSync, logger, cfg.SyncInterval)

	// Delivery
	webhookController := controllers.NewWebhookController(logger, calendarSync)
	applicationController := controllers.NewApplicationController(logger, workflow, calendarSync)
	providerController := controllers.NewProviderController(logger, provider, poller)

	mux := httpdelivery.NewRouter(webhookController, applicationController, providerController, tokens, logger)
	handler := middleware.CORS(nil, middleware.LoggingMiddleware(logger, mux))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go poller.Start(ctx)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
