// Package testdb provides an in-memory SQLite database for tests.
package testdb

import (
	"context"
	"log/slog"
	"testing"

	"github.com/helixml/briefer/infrastructure/persistence"
	"github.com/helixml/briefer/internal/database"
)

// New creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := persistence.AutoMigrate(db); err != nil {
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	return db
}
