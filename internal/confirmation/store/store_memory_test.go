package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "arbiter/pkg/domain"
)

// =============================================================================
// Confirmation Store Test Suite (in-memory)
// =============================================================================

type ConfirmationStoreSuite struct {
	suite.Suite
	store  *InMemoryStore
	userID id.UserID
	now    time.Time
}

func TestConfirmationStoreSuite(t *testing.T) {
	suite.Run(t, new(ConfirmationStoreSuite))
}

func (s *ConfirmationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.userID = id.UserID(uuid.New())
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// =============================================================================
// SetAll Tests
// =============================================================================

func (s *ConfirmationStoreSuite) TestSetAll() {
	ctx := context.Background()

	s.Run("inserts one active row per referee", func() {
		err := s.store.SetAll(ctx, s.userID, 1, []id.RefereeID{10, 11}, true, s.now)
		s.NoError(err)
		s.Equal(1, s.store.ActiveCount(10, 1))
		s.Equal(1, s.store.ActiveCount(11, 1))
	})

	s.Run("repeating the desired state changes nothing", func() {
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 2, []id.RefereeID{10}, true, s.now))
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 2, []id.RefereeID{10}, true, s.now.Add(time.Minute)))
		s.Equal(1, s.store.ActiveCount(10, 2))

		rows, err := s.store.FindActive(ctx, []id.RefereeID{10}, []id.GameID{2})
		s.NoError(err)
		s.Require().Len(rows, 1)
		// The original row survives untouched.
		s.Equal(s.now, rows[0].UpdatedAt)
	})

	s.Run("soft-deletes on unconfirm and preserves row history", func() {
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 3, []id.RefereeID{12}, true, s.now))
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 3, []id.RefereeID{12}, false, s.now.Add(time.Hour)))
		s.Equal(0, s.store.ActiveCount(12, 3))

		// A fresh confirm creates a new row rather than resurrecting the old.
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 3, []id.RefereeID{12}, true, s.now.Add(2*time.Hour)))
		s.Equal(1, s.store.ActiveCount(12, 3))
	})

	s.Run("unconfirm without prior row is a no-op", func() {
		s.NoError(s.store.SetAll(ctx, s.userID, 4, []id.RefereeID{13}, false, s.now))
		s.Equal(0, s.store.ActiveCount(13, 4))
	})
}

// =============================================================================
// FindActive / ListActive Tests
// =============================================================================

func (s *ConfirmationStoreSuite) TestQueries() {
	ctx := context.Background()

	s.Run("FindActive matches the referee and game cross product", func() {
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 5, []id.RefereeID{20}, true, s.now))
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 6, []id.RefereeID{20}, true, s.now))
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 5, []id.RefereeID{21}, true, s.now))

		rows, err := s.store.FindActive(ctx, []id.RefereeID{20}, []id.GameID{5})
		s.NoError(err)
		s.Len(rows, 1)

		rows, err = s.store.FindActive(ctx, []id.RefereeID{20, 21}, []id.GameID{5, 6})
		s.NoError(err)
		s.Len(rows, 3)
	})

	s.Run("queries skip soft-deleted rows", func() {
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 7, []id.RefereeID{22}, true, s.now))
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 7, []id.RefereeID{22}, false, s.now.Add(time.Minute)))

		rows, err := s.store.FindActive(ctx, []id.RefereeID{22}, []id.GameID{7})
		s.NoError(err)
		s.Empty(rows)

		rows, err = s.store.ListActive(ctx, []id.RefereeID{22})
		s.NoError(err)
		s.Empty(rows)
	})

	s.Run("empty inputs return empty results", func() {
		rows, err := s.store.FindActive(ctx, nil, nil)
		s.NoError(err)
		s.Empty(rows)
	})
}

// =============================================================================
// Invalidate Tests
// =============================================================================

func (s *ConfirmationStoreSuite) TestInvalidate() {
	ctx := context.Background()

	s.Run("soft-deletes only the named rows", func() {
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 8, []id.RefereeID{30}, true, s.now))
		s.Require().NoError(s.store.SetAll(ctx, s.userID, 9, []id.RefereeID{30}, true, s.now))

		rows, err := s.store.ListActive(ctx, []id.RefereeID{30})
		s.Require().NoError(err)
		s.Require().Len(rows, 2)

		var target int64
		for _, row := range rows {
			if row.GameID == 8 {
				target = row.ID
			}
		}
		s.Require().NoError(s.store.Invalidate(ctx, []int64{target}, s.now.Add(time.Hour)))

		s.Equal(0, s.store.ActiveCount(30, 8))
		s.Equal(1, s.store.ActiveCount(30, 9))
	})

	s.Run("unknown IDs are ignored", func() {
		s.NoError(s.store.Invalidate(ctx, []int64{99999}, s.now))
	})
}
