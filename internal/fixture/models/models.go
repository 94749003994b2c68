// Package models holds the read-only view of the fixture database: games,
// their reference data, and referee assignments. Nothing in this repo
// mutates these rows; fixture administration happens upstream.
package models

import (
	"fmt"
	"time"

	id "arbiter/pkg/domain"
)

// ObjectStatus is the lifecycle marker carried by fixture rows. The fixture
// database stores it as a string; every query boundary parses it into this
// variant so filtering on deletion is explicit rather than string compares.
type ObjectStatus string

const (
	StatusActive   ObjectStatus = "active"
	StatusNew      ObjectStatus = "new"
	StatusArchived ObjectStatus = "archived"
	StatusDeleted  ObjectStatus = "deleted"
)

// ParseObjectStatus maps a raw status string to the variant. Unknown values
// are an error: fixture data is upstream-owned, and a new status must be
// handled here deliberately, not silently treated as live.
func ParseObjectStatus(raw string) (ObjectStatus, error) {
	switch ObjectStatus(raw) {
	case StatusActive, StatusNew, StatusArchived, StatusDeleted:
		return ObjectStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown object status %q", raw)
	}
}

// Visible reports whether a row with this status appears in listings.
// Exhaustive on purpose: adding a status forces a decision here.
func (s ObjectStatus) Visible() bool {
	switch s {
	case StatusActive, StatusNew, StatusArchived:
		return true
	case StatusDeleted:
		return false
	default:
		return false
	}
}

// FileRef locates a stored media file. Module is the camelCase asset module
// name the CDN path is derived from (e.g. clubLogo).
type FileRef struct {
	ID     id.FileID
	Module string
	Name   string
}

// TeamSide is one team of a game with enough club data to build a logo URL.
type TeamSide struct {
	ID   id.TeamID
	Name string
	Logo *FileRef
}

// StadiumRef is the stadium summary attached to a game, if any.
type StadiumRef struct {
	ID   id.StadiumID
	Name string
}

// TournamentRef is the tournament summary attached to a game's tour.
type TournamentRef struct {
	ID   id.TournamentID
	Name string
}

// GroupRef is the group summary attached to a game's tour.
type GroupRef struct {
	ID   id.GroupID
	Name string
}

// AssignedGame is a game row joined with its reference data, as returned by
// the fixture store for the assigned-games listing.
type AssignedGame struct {
	ID         id.GameID
	DateStart  time.Time
	DateUpdate time.Time
	Status     int
	ScoreTeam1 *int
	ScoreTeam2 *int
	Team1      TeamSide
	Team2      TeamSide
	Stadium    *StadiumRef
	Tournament *TournamentRef
	Group      *GroupRef
}

// RosterEntry is one referee assigned to a game, with the data the roster
// endpoint exposes.
type RosterEntry struct {
	RefereeID  id.RefereeID
	Surname    string
	Name       string
	Patronymic string
	Position   string
	Phone      string
	Photo      *FileRef
}

// FullName joins the name parts, skipping empties.
func (e RosterEntry) FullName() string {
	full := ""
	for _, part := range []string{e.Surname, e.Name, e.Patronymic} {
		if part == "" {
			continue
		}
		if full != "" {
			full += " "
		}
		full += part
	}
	return full
}
