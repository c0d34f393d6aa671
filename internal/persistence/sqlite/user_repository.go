package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/mindease/internal/persistence"
)

// CreateUser inserts a new account.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, preferred_language, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.PreferredLanguage,
		formatTime(user.CreatedAt),
	)
	return mapError(err)
}

// GetUser retrieves an account by id.
func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	var (
		user    persistence.User
		created string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, preferred_language, created_at
		FROM users
		WHERE id = ?`, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PreferredLanguage,
		&created,
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	if user.CreatedAt, err = parseTime(created); err != nil {
		return persistence.User{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	return user, nil
}
