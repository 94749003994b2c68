package service

import (
	"strings"
	"time"

	"arbiter/internal/assets"
	fixmodels "arbiter/internal/fixture/models"
)

// Response DTOs with fixed, typed shapes. Mapping lives here so the store
// layer returns raw joined rows and the wire shape stays in one place.

// GamesPage is the paginated assigned-games response envelope.
type GamesPage struct {
	Data  []GameSummary `json:"data"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// GameSummary is one assigned game enriched with reference data and the
// computed confirmation flag.
type GameSummary struct {
	ID         int64        `json:"id"`
	DateStart  time.Time    `json:"date_start"`
	Status     int          `json:"status"`
	Score      Score        `json:"score"`
	Team1      TeamSummary  `json:"team1"`
	Team2      TeamSummary  `json:"team2"`
	Stadium    *NameSummary `json:"stadium"`
	Tournament *NameSummary `json:"tournament"`
	Group      *NameSummary `json:"group"`
	Confirmed  bool         `json:"confirmed"`
}

// Score carries both teams' scores; null until recorded.
type Score struct {
	Team1 *int `json:"team1"`
	Team2 *int `json:"team2"`
}

// TeamSummary is a game-side team with its club logo link.
type TeamSummary struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logo_url"`
}

// NameSummary is an id+name reference (stadium, tournament, group).
type NameSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RosterReferee is one referee on a game's roster.
type RosterReferee struct {
	ID       int64   `json:"id"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	Phone    string  `json:"phone"`
	PhotoURL *string `json:"photo_url"`
}

func (s *Service) toGameSummary(g fixmodels.AssignedGame, confirmed bool) GameSummary {
	summary := GameSummary{
		ID:        int64(g.ID),
		DateStart: g.DateStart,
		Status:    g.Status,
		Score:     Score{Team1: g.ScoreTeam1, Team2: g.ScoreTeam2},
		Team1:     s.toTeamSummary(g.Team1),
		Team2:     s.toTeamSummary(g.Team2),
		Confirmed: confirmed,
	}
	if g.Stadium != nil {
		summary.Stadium = &NameSummary{
			ID:   int64(g.Stadium.ID),
			Name: strings.TrimSpace(g.Stadium.Name),
		}
	}
	if g.Tournament != nil {
		summary.Tournament = &NameSummary{ID: int64(g.Tournament.ID), Name: g.Tournament.Name}
	}
	if g.Group != nil {
		summary.Group = &NameSummary{ID: int64(g.Group.ID), Name: g.Group.Name}
	}
	return summary
}

func (s *Service) toTeamSummary(side fixmodels.TeamSide) TeamSummary {
	return TeamSummary{
		ID:      int64(side.ID),
		Name:    side.Name,
		LogoURL: optionalURL(s.locator.URL(side.Logo, assets.ModuleClubLogo)),
	}
}

func (s *Service) toRosterReferee(entry fixmodels.RosterEntry, phone string) RosterReferee {
	return RosterReferee{
		ID:       int64(entry.RefereeID),
		FullName: entry.FullName(),
		Role:     roleLabel(entry.Position),
		Phone:    phone,
		PhotoURL: optionalURL(s.locator.URL(entry.Photo, assets.ModuleRefereePhoto)),
	}
}

// roleLabel collapses the " 2" suffix used by fixture data to distinguish
// the second holder of a position (e.g. "linesman 2" → "linesman").
func roleLabel(position string) string {
	return strings.TrimSuffix(position, " 2")
}

func optionalURL(url string) *string {
	if url == "" {
		return nil
	}
	return &url
}
