package di

import (
	"fmt"

	"github.com/aristath/portfolio-tracker/internal/clients/alphavantage"
	"github.com/aristath/portfolio-tracker/internal/config"
	"github.com/aristath/portfolio-tracker/internal/quotes"
	"github.com/aristath/portfolio-tracker/internal/reliability"
	"github.com/aristath/portfolio-tracker/internal/scheduler"
	"github.com/rs/zerolog"
)

const (
	quoteCleanupSchedule = "@daily"
	counterResetSchedule = "0 0 0 * * *" // provider quotas reset at midnight UTC
	maintenanceSchedule  = "0 0 3 * * SUN"
)

type scheduledJob struct {
	schedule string
	job      scheduler.Job
}

// RegisterJobs creates the scheduler and registers every background job.
// The scheduler is returned stopped.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	sched := scheduler.New(log)

	jobs := []scheduledJob{
		{quoteCleanupSchedule, quotes.NewCleanupJob(container.QuoteRepo, cfg.Quotes.CacheRetention, log)},
		{counterResetSchedule, alphavantage.NewCounterResetJob(container.AlphaVantageClient, log)},
		{maintenanceSchedule, reliability.NewMaintenanceJob(container.DB, log)},
	}

	if container.BackupService != nil {
		jobs = append(jobs, scheduledJob{
			cfg.Backup.Schedule,
			reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log),
		})
	}

	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			return fmt.Errorf("failed to register job %s: %w", j.job.Name(), err)
		}
	}

	container.Scheduler = sched
	return nil
}
