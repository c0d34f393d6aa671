package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/mindease/internal/persistence"
	"github.com/example/mindease/internal/testfixtures"
)

func TestSessionLifecycleAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	user := testfixtures.NewUserFixture(testfixtures.WithUserLanguage("Hindi"))
	harness.SeedUser(t, user)

	stored, err := harness.Users.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if stored.PreferredLanguage != "Hindi" {
		t.Fatalf("unexpected language %q", stored.PreferredLanguage)
	}

	session := testfixtures.NewSessionFixture(testfixtures.WithSessionUser(user.ID))
	if _, err := harness.Sessions.CreateSession(ctx, session.Persistence()); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	fetched, err := harness.Sessions.GetSession(ctx, session.Token)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if fetched.UserID != user.ID || !fetched.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("unexpected session %#v", fetched)
	}

	revoked, err := harness.Sessions.RevokeSession(ctx, session.Token, session.CreatedAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatalf("expected revoked timestamp")
	}

	if err := harness.Sessions.DeleteExpiredSessions(ctx, session.ExpiresAt); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if _, err := harness.Sessions.GetSession(ctx, session.Token); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected session to be pruned, got %v", err)
	}
}

func TestSessionsCascadeWithUnknownUser(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	session := testfixtures.NewSessionFixture(testfixtures.WithSessionUser("nobody"))
	_, err := harness.Sessions.CreateSession(context.Background(), session.Persistence())
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}
