package quotes

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob removes cached quotes older than the retention window.
// It should be scheduled to run daily.
type CleanupJob struct {
	repo      *Repository
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewCleanupJob creates a new quote cache cleanup job.
func NewCleanupJob(repo *Repository, retention time.Duration, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:      repo,
		retention: retention,
		now:       time.Now,
		log:       log.With().Str("job", "quote_cache_cleanup").Logger(),
	}
}

// Run executes the cleanup job.
func (j *CleanupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := j.repo.DeleteOlderThan(ctx, j.now().Add(-j.retention))
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired quotes")
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("Cleaned up expired quote cache entries")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "quote_cache_cleanup"
}
