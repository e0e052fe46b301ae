package reliability

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	testingpkg "github.com/aristath/portfolio-tracker/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectStore is a mock object store for testing
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, key string, body io.Reader) error {
	args := m.Called(ctx, key, body)
	return args.Error(0)
}

func (m *MockObjectStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ObjectInfo), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var fixedNow = time.Date(2025, 12, 4, 15, 30, 0, 0, time.UTC)

func newBackupService(t *testing.T, store ObjectStore) (*BackupService, string) {
	t.Helper()

	db, cleanup := testingpkg.NewTestDB(t, "backup")
	t.Cleanup(cleanup)

	_, err := db.Conn().Exec("INSERT INTO portfolios (token, created_at) VALUES ('tok', 0)")
	require.NoError(t, err)

	staging := t.TempDir()
	svc := NewBackupService(db, store, "/backups/", staging, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc, staging
}

func TestCreateAndUploadBackup(t *testing.T) {
	store := new(MockObjectStore)
	var uploaded []byte

	store.On("Upload", mock.Anything, "backups/portfolio-20251204T153000Z.db.gz", mock.Anything).
		Run(func(args mock.Arguments) {
			gz, err := gzip.NewReader(args.Get(2).(io.Reader))
			require.NoError(t, err)
			assert.Equal(t, "portfolio-20251204T153000Z.db", gz.Name)
			uploaded, err = io.ReadAll(gz)
			require.NoError(t, err)
		}).
		Return(nil)

	svc, staging := newBackupService(t, store)

	key, err := svc.CreateAndUploadBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "backups/portfolio-20251204T153000Z.db.gz", key)
	store.AssertExpectations(t)

	require.Greater(t, len(uploaded), 16)
	assert.Equal(t, "SQLite format 3\x00", string(uploaded[:16]))

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging files must be removed")
}

func TestCreateAndUploadBackup_UploadFails(t *testing.T) {
	store := new(MockObjectStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket unavailable"))

	svc, staging := newBackupService(t, store)

	_, err := svc.CreateAndUploadBackup(context.Background())
	assert.ErrorContains(t, err, "bucket unavailable")

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func backupObject(ts time.Time) ObjectInfo {
	return ObjectInfo{Key: "backups/portfolio-" + ts.Format(backupTimeLayout) + ".db.gz", Size: 1024}
}

func TestListBackups(t *testing.T) {
	store := new(MockObjectStore)
	store.On("List", mock.Anything, "backups/portfolio-").Return([]ObjectInfo{
		backupObject(fixedNow.AddDate(0, 0, -2)),
		{Key: "backups/portfolio-notes.txt"},
		backupObject(fixedNow),
	}, nil)

	svc, _ := newBackupService(t, store)

	backups, err := svc.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.True(t, backups[0].Timestamp.Equal(fixedNow), "newest first")
	assert.Equal(t, int64(1024), backups[0].SizeBytes)
}

func TestRotateOldBackups(t *testing.T) {
	var objects []ObjectInfo
	for days := 0; days < 6; days++ {
		objects = append(objects, backupObject(fixedNow.AddDate(0, 0, -days*10)))
	}

	store := new(MockObjectStore)
	store.On("List", mock.Anything, "backups/portfolio-").Return(objects, nil)
	// ages 30, 40 and 50 days are past a 25 day retention; 0, 10, 20 are the kept minimum
	store.On("Delete", mock.Anything, objects[3].Key).Return(nil)
	store.On("Delete", mock.Anything, objects[4].Key).Return(errors.New("denied"))
	store.On("Delete", mock.Anything, objects[5].Key).Return(nil)

	svc, _ := newBackupService(t, store)

	deleted, err := svc.RotateOldBackups(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	store.AssertExpectations(t)
}

func TestRotateOldBackups_KeepsMinimum(t *testing.T) {
	store := new(MockObjectStore)
	store.On("List", mock.Anything, "backups/portfolio-").Return([]ObjectInfo{
		backupObject(fixedNow.AddDate(-1, 0, 0)),
		backupObject(fixedNow.AddDate(-2, 0, 0)),
	}, nil)

	svc, _ := newBackupService(t, store)

	deleted, err := svc.RotateOldBackups(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	deleted, err = svc.RotateOldBackups(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestBackupJob(t *testing.T) {
	store := new(MockObjectStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("list failed"))

	svc, _ := newBackupService(t, store)
	job := NewBackupJob(svc, 30, zerolog.Nop())

	assert.Equal(t, "database_backup", job.Name())
	assert.NoError(t, job.Run(), "rotation failure must not fail the job")
	store.AssertNumberOfCalls(t, "Upload", 1)
}

func TestMaintenanceJob(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "maintenance")
	t.Cleanup(cleanup)

	job := NewMaintenanceJob(db, zerolog.Nop())
	assert.Equal(t, "database_maintenance", job.Name())
	assert.NoError(t, job.Run())
}
