package di

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aristath/portfolio-tracker/internal/clients/alphavantage"
	"github.com/aristath/portfolio-tracker/internal/config"
	"github.com/aristath/portfolio-tracker/internal/modules/portfolio"
	"github.com/aristath/portfolio-tracker/internal/modules/sentiment"
	"github.com/aristath/portfolio-tracker/internal/quotes"
	"github.com/aristath/portfolio-tracker/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories over the container's database
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.DB == nil {
		return fmt.Errorf("container database not initialized")
	}

	container.QuoteRepo = quotes.NewRepository(container.DB.Conn())
	container.PortfolioRepo = portfolio.NewRepository(container.DB.Conn(), log)

	return nil
}

// InitializeServices creates clients and services
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.AlphaVantageClient = alphavantage.NewClient(
		cfg.Quotes.AlphaVantageAPIKey,
		cfg.Quotes.DailyRequestLimit,
		log,
	)
	if cfg.Quotes.AlphaVantageAPIKey == "" {
		log.Warn().Msg("ALPHAVANTAGE_API_KEY not set, prices will come from the cache or the fallback price")
	}

	container.QuoteService = quotes.NewService(
		container.QuoteRepo,
		container.AlphaVantageClient,
		quotes.Config{
			TTL:           cfg.Quotes.CacheTTL,
			FallbackPrice: cfg.Quotes.FallbackPrice,
		},
		log,
	)

	container.PortfolioService = portfolio.NewPortfolioService(container.PortfolioRepo, container.QuoteService, log)
	container.SentimentAnalyzer = sentiment.NewAnalyzer()

	if cfg.Backup != nil && cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(ctx, cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("failed to create backup storage client: %w", err)
		}
		container.S3Client = s3Client
		container.BackupService = reliability.NewBackupService(
			container.DB,
			s3Client,
			cfg.Backup.Prefix,
			filepath.Join(cfg.DataDir, "backup-staging"),
			log,
		)
	}

	return nil
}
