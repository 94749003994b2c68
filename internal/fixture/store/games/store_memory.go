package games

import (
	"context"
	"sort"
	"sync"
	"time"

	"arbiter/internal/fixture/models"
	id "arbiter/pkg/domain"
	"arbiter/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this pattern:
// - Return ErrNotFound (wrapped) when a requested row does not exist
// - Return nil with empty results for queries that match nothing
// - Return wrapped errors with context for infrastructure failures

type memoryGame struct {
	game        models.AssignedGame
	status      models.ObjectStatus
	assignments []assignment
}

type assignment struct {
	refereeID id.RefereeID
	position  string
}

// InMemoryStore holds fixture data in memory for tests and development.
// Seed methods stand in for the upstream fixture administration that owns
// these rows in production.
type InMemoryStore struct {
	mu       sync.RWMutex
	games    map[id.GameID]*memoryGame
	referees map[id.RefereeID]models.RosterEntry
}

// NewInMemory constructs an empty in-memory fixture store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		games:    make(map[id.GameID]*memoryGame),
		referees: make(map[id.RefereeID]models.RosterEntry),
	}
}

// SeedGame inserts or replaces a game row.
func (s *InMemoryStore) SeedGame(game models.AssignedGame, status models.ObjectStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.games[game.ID]
	mg := &memoryGame{game: game, status: status}
	if existing != nil {
		mg.assignments = existing.assignments
	}
	s.games[game.ID] = mg
}

// SeedReferee registers a referee person record used by roster lookups.
func (s *InMemoryStore) SeedReferee(entry models.RosterEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referees[entry.RefereeID] = entry
}

// AssignReferee links a referee to a game with a position label.
func (s *InMemoryStore) AssignReferee(gameID id.GameID, refereeID id.RefereeID, position string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mg, ok := s.games[gameID]; ok {
		mg.assignments = append(mg.assignments, assignment{refereeID: refereeID, position: position})
	}
}

// TouchGame bumps a game's last-modified timestamp, simulating an upstream
// fixture edit.
func (s *InMemoryStore) TouchGame(gameID id.GameID, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mg, ok := s.games[gameID]; ok {
		mg.game.DateUpdate = updatedAt
	}
}

// ListForReferees returns the page of visible games where any of the given
// referees has an assignment, ordered by start time descending, plus the
// total match count.
func (s *InMemoryStore) ListForReferees(_ context.Context, refereeIDs []id.RefereeID, page, limit int) ([]models.AssignedGame, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[id.RefereeID]bool, len(refereeIDs))
	for _, rid := range refereeIDs {
		wanted[rid] = true
	}

	var matched []models.AssignedGame
	for _, mg := range s.games {
		if !mg.status.Visible() {
			continue
		}
		for _, a := range mg.assignments {
			if wanted[a.refereeID] {
				matched = append(matched, mg.game)
				break
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].DateStart.After(matched[j].DateStart)
	})

	total := len(matched)
	offset := (page - 1) * limit
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// LastUpdated returns the last-modified timestamp per game, for the
// reconciliation sweep. Games missing from the result were not found.
func (s *InMemoryStore) LastUpdated(_ context.Context, gameIDs []id.GameID) (map[id.GameID]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[id.GameID]time.Time, len(gameIDs))
	for _, gid := range gameIDs {
		if mg, ok := s.games[gid]; ok {
			out[gid] = mg.game.DateUpdate
		}
	}
	return out, nil
}

// RefereesForGame returns the assigned referees for a game with their
// position labels.
func (s *InMemoryStore) RefereesForGame(_ context.Context, gameID id.GameID) ([]models.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mg, ok := s.games[gameID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	entries := make([]models.RosterEntry, 0, len(mg.assignments))
	for _, a := range mg.assignments {
		entry, ok := s.referees[a.refereeID]
		if !ok {
			entry = models.RosterEntry{RefereeID: a.refereeID}
		}
		entry.Position = a.position
		entries = append(entries, entry)
	}
	return entries, nil
}
