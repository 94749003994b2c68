// Package domain defines the typed identifiers shared across stores and
// services. Keeping them in one place prevents accidental mixing of the
// identity-database UUID space with the fixture-database integer space.
package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// UserID identifies a platform user account in the identity database.
type UserID uuid.UUID

func (u UserID) String() string {
	return uuid.UUID(u).String()
}

// IsZero reports whether the ID is the nil UUID.
func (u UserID) IsZero() bool {
	return uuid.UUID(u) == uuid.Nil
}

// ParseUserID parses a UUID string into a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// RefereeID identifies a referee row in the fixture database. Distinct from
// UserID: a referee is a person record in fixture data, linked to at most one
// platform account through the identity store.
type RefereeID int64

func (r RefereeID) String() string {
	return strconv.FormatInt(int64(r), 10)
}

// GameID identifies a game row in the fixture database.
type GameID int64

func (g GameID) String() string {
	return strconv.FormatInt(int64(g), 10)
}

// ParseGameID parses a decimal game identifier. Returns an error for
// non-numeric or non-positive input.
func ParseGameID(s string) (GameID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return GameID(n), nil
}

// Fixture reference-data identifiers.
type (
	TeamID       int64
	ClubID       int64
	StadiumID    int64
	TournamentID int64
	GroupID      int64
	TourID       int64
	FileID       int64
)
