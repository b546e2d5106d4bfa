package storage

import (
	"path/filepath"
	"testing"
)

func TestMigrationsUpAndDown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("NewMigrationManager() error = %v", err)
	}
	defer func() { _ = mgr.Close() }()

	if err := mgr.Up(); err != nil {
		t.Fatalf("Up() error = %v", err)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if dirty {
		t.Error("migration state is dirty after Up()")
	}
	if version == 0 {
		t.Error("version = 0 after Up(), want latest")
	}

	// Up is idempotent.
	if err := mgr.Up(); err != nil {
		t.Errorf("second Up() error = %v", err)
	}

	if err := mgr.Down(); err != nil {
		t.Errorf("Down() error = %v", err)
	}
}
