package di

import (
	"fmt"

	"github.com/aristath/portfolio-tracker/internal/config"
	"github.com/aristath/portfolio-tracker/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabase opens the portfolio database and applies its schema
func InitializeDatabase(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	db, err := database.New(database.Config{
		Path: cfg.DatabasePath,
		Name: "portfolio",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize portfolio database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate portfolio database: %w", err)
	}

	log.Info().Str("path", db.Path()).Msg("Database initialized")

	return &Container{DB: db}, nil
}
