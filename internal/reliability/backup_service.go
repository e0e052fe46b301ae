// Package reliability provides database backup and maintenance jobs.
package reliability

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aristath/portfolio-tracker/internal/database"
	"github.com/rs/zerolog"
)

const (
	backupNamePrefix = "portfolio-"
	backupNameSuffix = ".db.gz"
	backupTimeLayout = "20060102T150405Z"

	// minBackupsToKeep survive rotation regardless of age
	minBackupsToKeep = 3
)

// BackupInfo represents a backup stored in the bucket
type BackupInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
}

// BackupService snapshots the database and ships compressed copies to object storage
type BackupService struct {
	db         *database.DB
	store      ObjectStore
	prefix     string
	stagingDir string
	now        func() time.Time
	log        zerolog.Logger
}

// NewBackupService creates a new backup service. Snapshots are staged in
// stagingDir and removed after upload.
func NewBackupService(db *database.DB, store ObjectStore, prefix, stagingDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		db:         db,
		store:      store,
		prefix:     strings.Trim(prefix, "/"),
		stagingDir: stagingDir,
		now:        time.Now,
		log:        log.With().Str("service", "backup").Logger(),
	}
}

// CreateAndUploadBackup writes a VACUUM INTO snapshot, gzips it and uploads
// it. Returns the object key.
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) (string, error) {
	s.log.Info().Msg("Starting database backup")
	startTime := time.Now()

	if err := os.MkdirAll(s.stagingDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	ts := s.now().UTC()
	name := backupNamePrefix + ts.Format(backupTimeLayout)
	snapshotPath := filepath.Join(s.stagingDir, name+".db")
	archivePath := filepath.Join(s.stagingDir, name+backupNameSuffix)

	// VACUUM INTO refuses to overwrite
	_ = os.Remove(snapshotPath)
	defer os.Remove(snapshotPath)
	defer os.Remove(archivePath)

	if err := s.db.VacuumInto(ctx, snapshotPath); err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}

	checksum, err := compressFile(snapshotPath, archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to compress snapshot: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	info, err := archive.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat archive: %w", err)
	}

	key := s.objectKey(name + backupNameSuffix)
	if err := s.store.Upload(ctx, key, archive); err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}

	s.log.Info().
		Str("key", key).
		Str("checksum", checksum).
		Int64("size_bytes", info.Size()).
		Dur("duration_ms", time.Since(startTime)).
		Msg("Database backup uploaded")

	return key, nil
}

// ListBackups returns stored backups, newest first
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, s.objectKey(backupNamePrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		ts, ok := parseBackupTime(obj.Key)
		if !ok {
			s.log.Warn().Str("key", obj.Key).Msg("Skipping object with unexpected name")
			continue
		}
		backups = append(backups, BackupInfo{Key: obj.Key, Timestamp: ts, SizeBytes: obj.Size})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// RotateOldBackups deletes backups older than retentionDays, always keeping
// the newest minBackupsToKeep. A retention of 0 keeps everything.
func (s *BackupService) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= minBackupsToKeep {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, b := range backups[minBackupsToKeep:] {
		if !b.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, b.Key); err != nil {
			s.log.Error().Err(err).Str("key", b.Key).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("Backup rotation completed")

	return deleted, nil
}

func (s *BackupService) objectKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func parseBackupTime(key string) (time.Time, bool) {
	name := filepath.Base(key)
	if !strings.HasPrefix(name, backupNamePrefix) || !strings.HasSuffix(name, backupNameSuffix) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, backupNamePrefix), backupNameSuffix)
	ts, err := time.Parse(backupTimeLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// compressFile gzips src into dst and returns the SHA256 of src.
func compressFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	gz.Name = filepath.Base(src)

	hash := sha256.New()
	if _, err := io.Copy(gz, io.TeeReader(in, hash)); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := out.Sync(); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}
