package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"arbiter/internal/auth/models"
	id "arbiter/pkg/domain"
	"arbiter/pkg/platform/sentinel"
)

// PostgresStore reads user accounts from the identity database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a user store over the given database handle.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByPhone looks a user up by login identifier.
func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.findWhere(ctx, `phone = $1`, phone)
}

// FindByID looks a user up by ID.
func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findWhere(ctx, `id = $1`, userID.String())
}

func (s *PostgresStore) findWhere(ctx context.Context, where string, arg any) (*models.User, error) {
	var (
		u      models.User
		raw    string
		status string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, phone, password_hash, status, created_at
		FROM "user" WHERE `+where,
		arg,
	).Scan(&raw, &u.Phone, &u.PasswordHash, &status, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	userID, err := id.ParseUserID(raw)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	u.ID = userID
	u.Status = models.UserStatus(status)
	return &u, nil
}
