// Package link stores the User↔Referee mapping (referee_user_map). Links are
// created administratively; this workflow only reads them. At most one link
// per user and one per referee, enforced unique in both directions.
package link

import (
	"context"
	"fmt"
	"sync"

	id "arbiter/pkg/domain"
	"arbiter/pkg/platform/sentinel"
)

// InMemoryStore holds user↔referee links in memory for tests/dev.
type InMemoryStore struct {
	mu        sync.RWMutex
	byUser    map[id.UserID][]id.RefereeID
	byReferee map[id.RefereeID]id.UserID
}

// NewInMemory constructs an empty in-memory link store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byUser:    make(map[id.UserID][]id.RefereeID),
		byReferee: make(map[id.RefereeID]id.UserID),
	}
}

// Link records a user↔referee mapping. Rejects a second link for the same
// referee, mirroring the database's bidirectional uniqueness.
func (s *InMemoryStore) Link(_ context.Context, userID id.UserID, refereeID id.RefereeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byReferee[refereeID]; taken {
		return fmt.Errorf("referee %d already linked: %w", refereeID, sentinel.ErrConflict)
	}
	s.byReferee[refereeID] = userID
	s.byUser[userID] = append(s.byUser[userID], refereeID)
	return nil
}

// RefereeIDsForUser returns every referee identity linked to the user. The
// uniqueness constraint limits this to at most one in practice, but callers
// must tolerate a set. An unlinked user yields an empty slice, not an error.
func (s *InMemoryStore) RefereeIDsForUser(_ context.Context, userID id.UserID) ([]id.RefereeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byUser[userID]
	out := make([]id.RefereeID, len(ids))
	copy(out, ids)
	return out, nil
}

// UserForReferee returns the platform account linked to a referee identity.
func (s *InMemoryStore) UserForReferee(_ context.Context, refereeID id.RefereeID) (id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byReferee[refereeID]
	if !ok {
		return id.UserID{}, fmt.Errorf("referee %d not linked: %w", refereeID, sentinel.ErrNotFound)
	}
	return userID, nil
}
