// Package testutil provides shared helpers for package tests.
package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"famlink/internal/database"
)

// MigrationsPath returns the repository's migrations directory
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// NewTestDB opens a migrated SQLite database in a temp dir that is closed
// when the test ends.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(MigrationsPath()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}
