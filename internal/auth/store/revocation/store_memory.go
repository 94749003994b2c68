// Package revocation tracks revoked token JTIs until they would have
// expired anyway. Logout revokes; the validator consults the list.
package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryList keeps revoked JTIs in memory for tests/dev.
type InMemoryList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	clock   func() time.Time
}

// Option configures an InMemoryList.
type Option func(*InMemoryList)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(l *InMemoryList) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewInMemory constructs an empty in-memory revocation list.
func NewInMemory(opts ...Option) *InMemoryList {
	l := &InMemoryList{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Revoke adds a JTI to the list until its token's natural expiry.
func (l *InMemoryList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = l.clock().Add(ttl)
	return nil
}

// IsRevoked reports whether a JTI is on the list and still within TTL.
func (l *InMemoryList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	expiresAt, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	return l.clock().Before(expiresAt), nil
}
