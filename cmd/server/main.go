package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"evently/internal/config"
	"evently/internal/database"
	"evently/internal/server"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "server").Logger()

	// Load .env file (ignore error if a file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize database
	db, err := database.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Create and start the server
	srv := server.New(cfg, db, log)

	log.Info().Str("port", cfg.Port).Dur("invite_expiry_window", cfg.InviteExpiryWindow).Msg("starting server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
