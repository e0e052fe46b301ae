// Package testing provides testing utilities and helpers for the portfolio tracker.
package testing

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/portfolio-tracker/internal/database"
)

// NewTestDB creates a file-backed SQLite database in a temporary directory with
// the schema applied. Returns the database and a cleanup function that closes
// the connection and removes the file; the cleanup is idempotent.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "test_"+name+"_*")
	if err != nil {
		t.Fatalf("Failed to create temporary database directory: %v", err)
	}

	db, err := database.New(database.Config{
		Path: filepath.Join(dir, name+".db"),
		Name: name,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.RemoveAll(dir)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Logf("Warning: Failed to remove temporary database directory %s: %v", dir, err)
		}
	}
}

// GetRawConnection returns the underlying *sql.DB for direct assertions.
func GetRawConnection(db *database.DB) *sql.DB {
	return db.Conn()
}
