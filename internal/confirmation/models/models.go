// Package models defines the referee game confirmation aggregate: a
// referee's affirmative acknowledgment of their assignment to a game.
package models

import (
	"time"

	id "arbiter/pkg/domain"
)

// Confirmation is one (referee, game) confirmation row.
//
// Invariants:
//   - At most one active confirmation per (referee, game) pair
//   - Rows are soft-deleted on revocation or invalidation, never hard-deleted
//
// Lifecycle per (referee, game): ABSENT → ACTIVE when the referee confirms;
// ACTIVE → ABSENT when the referee revokes, or when reconciliation detects
// the game changed after the confirmation was recorded. The pair cycles
// indefinitely as fixtures and confirmations change.
type Confirmation struct {
	ID        int64
	RefereeID id.RefereeID
	GameID    id.GameID
	UserID    id.UserID
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Active reports whether the confirmation is live (not soft-deleted).
func (c *Confirmation) Active() bool {
	return c.DeletedAt == nil
}

// StaleAgainst reports whether the game was modified strictly after this
// confirmation was last touched, meaning the referee confirmed fixture data
// that has since changed and the confirmation must be re-obtained.
func (c *Confirmation) StaleAgainst(gameUpdatedAt time.Time) bool {
	return gameUpdatedAt.After(c.UpdatedAt)
}

// Pair keys a confirmation by its (referee, game) identity.
type Pair struct {
	RefereeID id.RefereeID
	GameID    id.GameID
}

// PairOf returns the confirmation's (referee, game) key.
func (c *Confirmation) PairOf() Pair {
	return Pair{RefereeID: c.RefereeID, GameID: c.GameID}
}
