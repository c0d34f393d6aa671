package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/mindease/internal/persistence"
	"github.com/example/mindease/internal/persistence/sqlite"
)

// SQLiteHarness exposes repositories backed by a migrated temporary database.
type SQLiteHarness struct {
	Users    persistence.UserRepository
	Sessions persistence.SessionRepository
	Storage  *sqlite.Storage
}

// NewSQLiteHarness opens and migrates a database under tb.TempDir. The
// storage is closed through tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	storage, err := sqlite.Open(filepath.Join(tb.TempDir(), "mindease.db"))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &SQLiteHarness{Users: storage, Sessions: storage, Storage: storage}
}

// SeedUser inserts the fixture and fails the test on error.
func (h *SQLiteHarness) SeedUser(tb testing.TB, user UserFixture) {
	tb.Helper()
	if err := h.Users.CreateUser(context.Background(), user.Persistence()); err != nil {
		tb.Fatalf("seed user %s: %v", user.ID, err)
	}
}
