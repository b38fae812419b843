// Command worklog-init prepares a SQLite database: it runs the schema
// migrations and creates the bootstrap admin account.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"worklog/internal/config"
	"worklog/internal/core"
	applog "worklog/internal/log"
	"worklog/internal/services"
	"worklog/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		email    = flag.String("email", "", "admin email (falls back to ADMIN_EMAIL)")
		password = flag.String("password", "", "admin password (falls back to ADMIN_PASSWORD)")
		name     = flag.String("name", "", "admin display name (falls back to ADMIN_NAME)")
	)
	flag.Parse()

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

	if *email == "" {
		*email = cfg.AdminEmail
	}
	if *password == "" {
		*password = cfg.AdminPassword
	}
	if *name == "" {
		*name = cfg.AdminName
	}

	if *email == "" || *password == "" {
		logger.Error("Admin email and password are required (flags or ADMIN_EMAIL/ADMIN_PASSWORD)")
		os.Exit(2)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	auth := services.NewAuthService(repo)
	user, err := auth.CreateUser(context.Background(), *email, *password, *name, core.RoleAdmin)
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			logger.Info("Admin account already exists", "email", *email)
			return
		}
		logger.Error("Failed to create admin account", "error", err)
		os.Exit(1)
	}

	logger.Info("Admin account created",
		"user_id", user.ID,
		"email", user.Email,
		"db", cfg.SQLiteDBPath)
}
