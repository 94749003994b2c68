package store

import (
	"context"
	"sync"
	"time"

	"arbiter/internal/confirmation/models"
	id "arbiter/pkg/domain"
)

// Error Contract:
// All store methods follow this pattern:
// - Queries return nil with empty results when nothing matches
// - Writes that would violate the active-uniqueness invariant converge to
//   the desired state instead of erroring
// - Infrastructure failures return wrapped errors with context

// InMemoryStore holds confirmation rows in memory for tests/dev. The mutex
// serializes SetAll against concurrent callers the way the database's
// transaction isolation does for the PostgreSQL store.
type InMemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []*models.Confirmation
}

// NewInMemory constructs an empty in-memory confirmation store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

// FindActive returns the active confirmations matching any of the given
// referee IDs crossed with any of the given game IDs.
func (s *InMemoryStore) FindActive(_ context.Context, refereeIDs []id.RefereeID, gameIDs []id.GameID) ([]models.Confirmation, error) {
	refs := make(map[id.RefereeID]bool, len(refereeIDs))
	for _, rid := range refereeIDs {
		refs[rid] = true
	}
	games := make(map[id.GameID]bool, len(gameIDs))
	for _, gid := range gameIDs {
		games[gid] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Confirmation
	for _, row := range s.rows {
		if row.Active() && refs[row.RefereeID] && games[row.GameID] {
			out = append(out, *row)
		}
	}
	return out, nil
}

// ListActive returns every active confirmation for the given referee IDs.
func (s *InMemoryStore) ListActive(_ context.Context, refereeIDs []id.RefereeID) ([]models.Confirmation, error) {
	refs := make(map[id.RefereeID]bool, len(refereeIDs))
	for _, rid := range refereeIDs {
		refs[rid] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Confirmation
	for _, row := range s.rows {
		if row.Active() && refs[row.RefereeID] {
			out = append(out, *row)
		}
	}
	return out, nil
}

// SetAll drives every (refereeID, gameID) pair to the desired state in one
// atomic step: inserts missing rows when desired, soft-deletes existing ones
// when not, and leaves pairs already in the desired state untouched.
func (s *InMemoryStore) SetAll(_ context.Context, userID id.UserID, gameID id.GameID, refereeIDs []id.RefereeID, desired bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, refereeID := range refereeIDs {
		existing := s.findActiveLocked(refereeID, gameID)
		switch {
		case desired && existing == nil:
			s.rows = append(s.rows, &models.Confirmation{
				ID:        s.nextID,
				RefereeID: refereeID,
				GameID:    gameID,
				UserID:    userID,
				CreatedAt: now,
				UpdatedAt: now,
			})
			s.nextID++
		case !desired && existing != nil:
			deletedAt := now
			existing.DeletedAt = &deletedAt
			existing.UpdatedAt = now
		}
	}
	return nil
}

// Invalidate soft-deletes the confirmations with the given row IDs. Already
// deleted rows are left as-is.
func (s *InMemoryStore) Invalidate(_ context.Context, confirmationIDs []int64, now time.Time) error {
	wanted := make(map[int64]bool, len(confirmationIDs))
	for _, cid := range confirmationIDs {
		wanted[cid] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if wanted[row.ID] && row.Active() {
			deletedAt := now
			row.DeletedAt = &deletedAt
			row.UpdatedAt = now
		}
	}
	return nil
}

// ActiveCount reports the number of active rows for a (referee, game) pair.
// Test helper for the uniqueness invariant.
func (s *InMemoryStore) ActiveCount(refereeID id.RefereeID, gameID id.GameID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, row := range s.rows {
		if row.Active() && row.RefereeID == refereeID && row.GameID == gameID {
			count++
		}
	}
	return count
}

func (s *InMemoryStore) findActiveLocked(refereeID id.RefereeID, gameID id.GameID) *models.Confirmation {
	for _, row := range s.rows {
		if row.Active() && row.RefereeID == refereeID && row.GameID == gameID {
			return row
		}
	}
	return nil
}
