package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/portfolio-tracker/internal/database"
	"github.com/rs/zerolog"
)

// jobTimeout bounds a single backup or maintenance run
const jobTimeout = 10 * time.Minute

// BackupJob snapshots the database to object storage and rotates old copies
type BackupJob struct {
	service       *BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "database_backup").Logger(),
	}
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	// A failed rotation leaves extra backups behind; the upload still counts
	if _, err := j.service.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "database_backup"
}

// MaintenanceJob checkpoints the WAL and compacts the database
type MaintenanceJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(db *database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:  db,
		log: log.With().Str("job", "database_maintenance").Logger(),
	}
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	j.log.Info().Msg("Starting database maintenance")
	startTime := time.Now()

	if err := j.db.QuickCheck(ctx); err != nil {
		return fmt.Errorf("database %s unreachable: %w", j.db.Name(), err)
	}

	before, err := j.db.GetStats()
	if err != nil {
		return err
	}

	if _, err := j.db.Conn().ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	if _, err := j.db.Conn().ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("VACUUM failed for %s: %w", j.db.Name(), err)
	}

	after, err := j.db.GetStats()
	if err != nil {
		return err
	}

	j.log.Info().
		Int64("pages_before", before.PageCount).
		Int64("pages_after", after.PageCount).
		Int64("wal_bytes_before", before.WALSizeBytes).
		Dur("duration_ms", time.Since(startTime)).
		Msg("Database maintenance completed")

	return nil
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "database_maintenance"
}
