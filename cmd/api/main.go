package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sendfy/campaign-engine/internal/config"
	"github.com/sendfy/campaign-engine/internal/db"
	"github.com/sendfy/campaign-engine/internal/gateway"
	"github.com/sendfy/campaign-engine/internal/handler"
	"github.com/sendfy/campaign-engine/internal/repository"
	"github.com/sendfy/campaign-engine/internal/scheduler"
	"github.com/sendfy/campaign-engine/internal/service"
	"github.com/sendfy/campaign-engine/internal/shortener"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting campaign engine")

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Connect to database
	database, err := db.New(db.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("connected to database")

	// Connect to Redis for the shortener cache. The service still runs
	// without it; the shortener just skips caching.
	var cache *redis.Client
	if opts, err := redis.ParseURL(cfg.Redis.URL); err != nil {
		logger.Warn("invalid REDIS_URL, running without shortener cache", slog.String("error", err.Error()))
	} else {
		cache = redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, running without shortener cache", slog.String("error", err.Error()))
			cache = nil
		} else {
			logger.Info("connected to redis", slog.String("url", cfg.Redis.URL))
			defer cache.Close()
		}
		cancel()
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(database.DB)
	integrationRepo := repository.NewIntegrationRepository(database.DB)
	campaignRepo := repository.NewCampaignRepository(database.DB)
	scheduledRepo := repository.NewScheduledMessageRepository(database.DB)
	historyRepo := repository.NewHistoryRepository(database.DB)

	// Initialize delivery collaborators
	sender := gateway.NewHTTPSender(gateway.Config{
		APIURL:  cfg.SMS.APIURL,
		APIKey:  cfg.SMS.APIKey,
		Timeout: cfg.SMS.Timeout,
	})
	urlShortener := shortener.New(shortener.Config{
		ServiceURL: cfg.Shortener.ServiceURL,
		APIKey:     cfg.Shortener.APIKey,
		Timeout:    cfg.Shortener.Timeout,
	}, cache, logger)

	// Initialize scheduler and reload pending work
	sched := scheduler.New(scheduledRepo, historyRepo, accountRepo, sender, logger)
	if err := sched.LoadPending(context.Background()); err != nil {
		logger.Error("failed to load scheduled messages", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize services
	templateSvc := service.NewTemplateService()
	creditSvc := service.NewCreditService(accountRepo, logger)
	webhookSvc := service.NewWebhookService(service.Deps{
		AccountRepo:     accountRepo,
		IntegrationRepo: integrationRepo,
		CampaignRepo:    campaignRepo,
		ScheduledRepo:   scheduledRepo,
		HistoryRepo:     historyRepo,
		TemplateSvc:     templateSvc,
		Sender:          sender,
		Shortener:       urlShortener,
		Scheduler:       sched,
		AppBaseURL:      cfg.API.AppBaseURL,
		Logger:          logger,
	})

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(webhookSvc, logger)
	creditHandler := handler.NewCreditHandler(creditSvc, logger)
	healthHandler := handler.NewHealthHandler(database, cache, logger)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(handler.RecoveryMiddleware(logger))
	r.Use(handler.LoggingMiddleware(logger))

	r.Get("/health", healthHandler.Health)
	r.Post("/webhook/{webhookID}", webhookHandler.Receive)
	r.Route("/admin/credits", func(r chi.Router) {
		r.Post("/add", creditHandler.AddCredits)
		r.Post("/remove", creditHandler.RemoveCredits)
	})

	// Sweep for scheduled messages whose timers were missed. Fallback
	// path only; timers are the primary mechanism.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.Scheduler.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if err := sched.ProcessDue(sweepCtx); err != nil {
					logger.Error("scheduled message sweep failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	// Create server
	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", slog.String("error", err.Error()))
		stopSweep()
		os.Exit(1)

	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		stopSweep()

		// Disarm timers without deleting persisted rows; they are
		// reloaded on the next start.
		sched.StopAll()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.Info("server stopped gracefully")
	}
}
