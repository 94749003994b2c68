package user

import (
	"context"
	"fmt"
	"sync"

	"arbiter/internal/auth/models"
	id "arbiter/pkg/domain"
	"arbiter/pkg/platform/sentinel"
)

// InMemoryStore holds user accounts in memory for tests/dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*models.User
	byPhone map[string]*models.User
}

// NewInMemory constructs an empty in-memory user store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.UserID]*models.User),
		byPhone: make(map[string]*models.User),
	}
}

// Create inserts a user. Rejects duplicate phone numbers.
func (s *InMemoryStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byPhone[u.Phone]; taken {
		return fmt.Errorf("phone already registered: %w", sentinel.ErrConflict)
	}
	copied := *u
	s.byID[u.ID] = &copied
	s.byPhone[u.Phone] = &copied
	return nil
}

// FindByPhone looks a user up by login identifier.
func (s *InMemoryStore) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byPhone[phone]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

// FindByID looks a user up by ID.
func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byID[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}
