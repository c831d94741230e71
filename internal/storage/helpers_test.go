package storage

import (
	"path/filepath"
	"testing"
)

// setupTestService creates a test service backed by a migrated temporary database file.
func setupTestService(t *testing.T) *Service {
	t.Helper()

	config := DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service := NewService(db)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return service
}
