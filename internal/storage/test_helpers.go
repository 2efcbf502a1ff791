package storage

import (
	"path/filepath"
	"testing"
)

// OpenTest opens a migrated database in a temporary directory that is removed
// when the test ends.
func OpenTest(t testing.TB) *DB {
	t.Helper()

	db, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}
