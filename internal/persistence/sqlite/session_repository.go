package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/example/mindease/internal/persistence"
)

// tokenDigest is the lookup key stored in place of the bearer token.
func tokenDigest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateSession stores a new session. Only the token digest is persisted.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	session.Token = strings.TrimSpace(session.Token)
	if session.ID == "" || session.UserID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	var revokedAt sql.NullString
	if session.RevokedAt != nil {
		revokedAt = sql.NullString{String: formatTime(*session.RevokedAt), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_digest, expires_at, revoked_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		tokenDigest(session.Token),
		formatTime(session.ExpiresAt),
		revokedAt,
		formatTime(session.CreatedAt),
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	return normalizeSession(session), nil
}

// GetSession retrieves a session by its bearer token.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return s.getSession(ctx, s.db.QueryRowContext, token)
}

type queryRowFunc func(ctx context.Context, query string, args ...any) *sql.Row

func (s *Storage) getSession(ctx context.Context, queryRow queryRowFunc, token string) (persistence.Session, error) {
	var (
		session          persistence.Session
		expires, created string
		revoked          sql.NullString
	)
	err := queryRow(ctx, `
		SELECT id, user_id, expires_at, revoked_at, created_at
		FROM sessions
		WHERE token_digest = ?`, tokenDigest(token)).Scan(
		&session.ID,
		&session.UserID,
		&expires,
		&revoked,
		&created,
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	session.Token = token
	if session.ExpiresAt, err = parseTime(expires); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: parse expires_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(created); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if session.RevokedAt, err = parseNullTime(revoked); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: parse revoked_at: %w", err)
	}
	return session, nil
}

// RevokeSession marks the session as revoked and returns the updated record.
func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	var revoked persistence.Session
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE sessions SET revoked_at = ? WHERE token_digest = ?`,
			formatTime(revokedAt), tokenDigest(token))
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		revoked, err = s.getSession(ctx, tx.QueryRowContext, token)
		return err
	})
	if err != nil {
		return persistence.Session{}, err
	}
	return revoked, nil
}

// DeleteExpiredSessions removes sessions that expired on or before the reference time.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(reference))
	return mapError(err)
}

func normalizeSession(session persistence.Session) persistence.Session {
	session.ExpiresAt = session.ExpiresAt.UTC()
	session.CreatedAt = session.CreatedAt.UTC()
	if session.RevokedAt != nil {
		revoked := session.RevokedAt.UTC()
		session.RevokedAt = &revoked
	}
	return session
}
