package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"arbiter/internal/confirmation/models"
	id "arbiter/pkg/domain"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// PostgresStore persists confirmation rows in the identity database.
//
// The referee_games_confirmation table carries a partial unique index on
// (game_id, referee_id) WHERE deleted_at IS NULL. That index is the safety
// net for the one-active-confirmation invariant: a write racing past the
// in-transaction existence check is rejected by the index and treated as
// already-converged rather than surfaced as an error.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a confirmation store over the given database handle.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindActive returns the active confirmations matching any of the given
// referee IDs crossed with any of the given game IDs.
func (s *PostgresStore) FindActive(ctx context.Context, refereeIDs []id.RefereeID, gameIDs []id.GameID) ([]models.Confirmation, error) {
	if len(refereeIDs) == 0 || len(gameIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, referee_id, game_id, user_id, created_at, updated_at
		FROM referee_games_confirmation
		WHERE referee_id = ANY($1) AND game_id = ANY($2) AND deleted_at IS NULL
	`, refereeArray(refereeIDs), gameArray(gameIDs))
	if err != nil {
		return nil, fmt.Errorf("query confirmations: %w", err)
	}
	defer rows.Close()
	return scanConfirmations(rows)
}

// ListActive returns every active confirmation for the given referee IDs.
func (s *PostgresStore) ListActive(ctx context.Context, refereeIDs []id.RefereeID) ([]models.Confirmation, error) {
	if len(refereeIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, referee_id, game_id, user_id, created_at, updated_at
		FROM referee_games_confirmation
		WHERE referee_id = ANY($1) AND deleted_at IS NULL
	`, refereeArray(refereeIDs))
	if err != nil {
		return nil, fmt.Errorf("query confirmations: %w", err)
	}
	defer rows.Close()
	return scanConfirmations(rows)
}

// SetAll drives every (refereeID, gameID) pair to the desired state inside a
// single transaction: either all intended changes apply or none do. Pairs
// already in the desired state are untouched, so repeated calls are no-ops.
func (s *PostgresStore) SetAll(ctx context.Context, userID id.UserID, gameID id.GameID, refereeIDs []id.RefereeID, desired bool, now time.Time) error {
	if len(refereeIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin confirmation tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, refereeID := range refereeIDs {
		if desired {
			err = s.confirmOne(ctx, tx, userID, gameID, refereeID, now)
		} else {
			err = s.revokeOne(ctx, tx, userID, gameID, refereeID, now)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit confirmation tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) confirmOne(ctx context.Context, tx *sql.Tx, userID id.UserID, gameID id.GameID, refereeID id.RefereeID, now time.Time) error {
	// The partial unique index makes the insert race-safe: if a concurrent
	// writer confirmed the same pair first, DO NOTHING converges silently.
	_, err := tx.ExecContext(ctx, `
		INSERT INTO referee_games_confirmation
			(referee_id, game_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (game_id, referee_id) WHERE deleted_at IS NULL DO NOTHING
	`, int64(refereeID), int64(gameID), userID.String(), now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil
		}
		return fmt.Errorf("insert confirmation: %w", err)
	}
	return nil
}

func (s *PostgresStore) revokeOne(ctx context.Context, tx *sql.Tx, userID id.UserID, gameID id.GameID, refereeID id.RefereeID, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE referee_games_confirmation
		SET deleted_at = $4, updated_at = $4, updated_by = $3
		WHERE referee_id = $1 AND game_id = $2 AND user_id = $3 AND deleted_at IS NULL
	`, int64(refereeID), int64(gameID), userID.String(), now)
	if err != nil {
		return fmt.Errorf("revoke confirmation: %w", err)
	}
	return nil
}

// Invalidate soft-deletes the confirmations with the given row IDs.
func (s *PostgresStore) Invalidate(ctx context.Context, confirmationIDs []int64, now time.Time) error {
	if len(confirmationIDs) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE referee_games_confirmation
		SET deleted_at = $2, updated_at = $2
		WHERE id = ANY($1) AND deleted_at IS NULL
	`, pq.Array(confirmationIDs), now)
	if err != nil {
		return fmt.Errorf("invalidate confirmations: %w", err)
	}
	return nil
}

func scanConfirmations(rows *sql.Rows) ([]models.Confirmation, error) {
	var out []models.Confirmation
	for rows.Next() {
		var (
			c         models.Confirmation
			refereeID int64
			gameID    int64
			userRaw   string
		)
		if err := rows.Scan(&c.ID, &refereeID, &gameID, &userRaw, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan confirmation: %w", err)
		}
		c.RefereeID = id.RefereeID(refereeID)
		c.GameID = id.GameID(gameID)
		userID, err := id.ParseUserID(userRaw)
		if err != nil {
			return nil, fmt.Errorf("parse confirmation user id: %w", err)
		}
		c.UserID = userID
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate confirmations: %w", err)
	}
	return out, nil
}

func refereeArray(refereeIDs []id.RefereeID) any {
	raw := make([]int64, len(refereeIDs))
	for i, rid := range refereeIDs {
		raw[i] = int64(rid)
	}
	return pq.Array(raw)
}

func gameArray(gameIDs []id.GameID) any {
	raw := make([]int64, len(gameIDs))
	for i, gid := range gameIDs {
		raw[i] = int64(gid)
	}
	return pq.Array(raw)
}
