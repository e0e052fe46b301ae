// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/portfolio-tracker/internal/clients/alphavantage"
	"github.com/aristath/portfolio-tracker/internal/database"
	"github.com/aristath/portfolio-tracker/internal/modules/portfolio"
	"github.com/aristath/portfolio-tracker/internal/modules/sentiment"
	"github.com/aristath/portfolio-tracker/internal/quotes"
	"github.com/aristath/portfolio-tracker/internal/reliability"
	"github.com/aristath/portfolio-tracker/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire() and passed to the server for access to services.
type Container struct {
	// Database
	DB *database.DB

	// Clients
	AlphaVantageClient *alphavantage.Client
	S3Client           *reliability.S3Client // nil unless backups are enabled

	// Repositories
	QuoteRepo     *quotes.Repository
	PortfolioRepo *portfolio.Repository

	// Services
	QuoteService      *quotes.Service
	PortfolioService  *portfolio.PortfolioService
	SentimentAnalyzer *sentiment.Analyzer
	BackupService     *reliability.BackupService // nil unless backups are enabled

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
