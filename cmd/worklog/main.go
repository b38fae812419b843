package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"worklog/internal/amqp"
	"worklog/internal/config"
	"worklog/internal/core"
	apphttp "worklog/internal/http"
	applog "worklog/internal/log"
	"worklog/internal/memory"
	"worklog/internal/services"
	"worklog/internal/session"
	"worklog/internal/storage"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := applog.New(applog.Config{
		Level:     cfg.SlogLevel(),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var (
		userStore  services.UserStore
		entryStore services.EntryStore
		pinger     apphttp.Pinger
	)

	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		userStore, entryStore, pinger = repo, repo, repo
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		store := memory.New()
		userStore, entryStore, pinger = store, store, store
		logger.Info("Initialized memory backend")
	}

	// The export publisher is optional; without a broker entries still
	// save locally and the worker's backlog scan picks them up later.
	var publisher services.EntryEventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without export publishing", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	authService := services.NewAuthService(userStore)
	seedAdmin(cfg, authService, logger)

	sessions := session.NewStore(cfg.SessionMaxCount, cfg.SessionTTL)
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	sessions.StartCleanup(10*time.Minute, stopCleanup)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:      authService,
		Users:     services.NewUserService(userStore),
		Entries:   services.NewEntryService(entryStore, core.DefaultTaxonomy(), publisher),
		Analytics: services.NewAnalyticsService(entryStore),
		Sessions:  sessions,
		Pinger:    pinger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting worklog server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// seedAdmin creates the bootstrap admin account when credentials are
// configured and the email is not yet registered.
func seedAdmin(cfg *config.Config, auth *services.AuthService, logger *applog.Logger) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}

	ctx := context.Background()
	user, err := auth.CreateUser(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName, core.RoleAdmin)
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			logger.Debug("Admin account already present", "email", cfg.AdminEmail)
			return
		}
		logger.Error("Failed to seed admin account", "error", err, "email", cfg.AdminEmail)
		return
	}
	logger.Info("Seeded admin account", "user_id", user.ID, "email", user.Email)
}
