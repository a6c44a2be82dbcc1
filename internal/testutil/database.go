// Package testutil provides shared fixtures for tests: a migrated in-memory
// results database and a fluent builder for shipments and their documents.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/docintake/internal/storage"
)

// SetupTestDB creates a migrated in-memory database that is closed when the
// test ends.
//
// Example:
//
//	store := testutil.SetupTestDB(t)
//	_, err := store.SaveReport(ctx, "SHP-1", report)
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath, nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return store
}
