// Package main implements the entry point for the Study Ace API server,
// which serves flashcard sets, practice sessions and the gamification
// ledger over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phrazzld/studyace/internal/config"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/platform/postgres"
)

func main() {
	migrate := flag.String("migrate", "", "run a migration command (up, down, status, version, reset) and exit")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before configuration")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *envFile, *migrate); err != nil {
		log.Fatalf("studyace: %v", err)
	}
}

// run loads configuration and either applies migrations or serves until ctx
// is canceled.
func run(ctx context.Context, envFile, migrateCmd string) error {
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_backend", cfg.Database.Backend),
		slog.String("session_backend", cfg.Session.Backend))

	if migrateCmd != "" {
		if cfg.Database.Backend != "postgres" {
			return fmt.Errorf("migrations require the postgres backend, got %q", cfg.Database.Backend)
		}
		db, err := postgres.Open(ctx, cfg.Database.URL, postgres.PoolConfig{MaxOpenConns: 1})
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, migrateCmd, l)
	}

	st, err := openStorage(ctx, cfg, l)
	if err != nil {
		return err
	}
	app, err := newApplication(cfg, l, st)
	if err != nil {
		st.close(l)
		return err
	}
	return app.Run(ctx)
}

// loadEnvFile applies a dotenv file to the process environment. A missing
// file is not an error; variables already set win over the file.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func init() {
	// The standard logger is only used for fatal startup errors.
	log.SetOutput(os.Stderr)
	log.SetFlags(0)
}
