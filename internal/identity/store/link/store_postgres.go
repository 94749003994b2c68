package link

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "arbiter/pkg/domain"
	"arbiter/pkg/platform/sentinel"
)

// PostgresStore reads the referee_user_map table in the identity database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a link store over the given database handle.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// RefereeIDsForUser returns every referee identity linked to the user,
// skipping soft-deleted links. An unlinked user yields an empty slice.
func (s *PostgresStore) RefereeIDsForUser(ctx context.Context, userID id.UserID) ([]id.RefereeID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT referee_id FROM referee_user_map
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("query referee links: %w", err)
	}
	defer rows.Close()

	var ids []id.RefereeID
	for rows.Next() {
		var refereeID int64
		if err := rows.Scan(&refereeID); err != nil {
			return nil, fmt.Errorf("scan referee link: %w", err)
		}
		ids = append(ids, id.RefereeID(refereeID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referee links: %w", err)
	}
	return ids, nil
}

// UserForReferee returns the platform account linked to a referee identity.
func (s *PostgresStore) UserForReferee(ctx context.Context, refereeID id.RefereeID) (id.UserID, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM referee_user_map
		WHERE referee_id = $1 AND deleted_at IS NULL
	`, int64(refereeID)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return id.UserID{}, fmt.Errorf("referee %s not linked: %w", refereeID, sentinel.ErrNotFound)
		}
		return id.UserID{}, fmt.Errorf("query referee link: %w", err)
	}
	userID, err := id.ParseUserID(raw)
	if err != nil {
		return id.UserID{}, fmt.Errorf("parse linked user id: %w", err)
	}
	return userID, nil
}
