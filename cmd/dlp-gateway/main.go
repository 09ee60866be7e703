package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-dlp-gateway/internal/app"
	"github.com/lueurxax/telegram-dlp-gateway/internal/platform/config"
	"github.com/lueurxax/telegram-dlp-gateway/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *storage.DB

	if cfg.PostgresDSN != "" {
		db, err = storage.New(ctx, cfg.PostgresDSN, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	application, err := app.New(cfg, db, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gateway")
	}

	application.LoadPolicy(ctx)

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("gateway stopped")

			return
		}

		logger.Fatal().Err(err).Msg("gateway error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
