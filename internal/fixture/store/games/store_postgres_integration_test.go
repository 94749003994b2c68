//go:build integration

package games_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"arbiter/internal/fixture/store/games"
	id "arbiter/pkg/domain"
	"arbiter/pkg/platform/sentinel"
	"arbiter/pkg/testutil/containers"
)

type PostgresGameSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *games.PostgresStore

	tourID int64
	teamA  int64
	teamB  int64
}

func TestPostgresGameSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresGameSuite))
}

func (s *PostgresGameSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = games.NewPostgres(s.postgres.DB)
}

func (s *PostgresGameSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"game_referee", "game", "referee", "tour", "group", "tournament", "stadium", "team", "club", "file"))

	// Minimal reference data every game needs.
	var tournamentID, groupID int64
	s.Require().NoError(s.postgres.DB.QueryRow(
		`INSERT INTO tournament (short_name) VALUES ('Championship') RETURNING id`).Scan(&tournamentID))
	s.Require().NoError(s.postgres.DB.QueryRow(
		`INSERT INTO "group" (name) VALUES ('Group A') RETURNING id`).Scan(&groupID))
	s.Require().NoError(s.postgres.DB.QueryRow(
		`INSERT INTO tour (tournament_id, group_id) VALUES ($1, $2) RETURNING id`,
		tournamentID, groupID).Scan(&s.tourID))

	var logoID, clubID int64
	s.Require().NoError(s.postgres.DB.QueryRow(
		`INSERT INTO file (module, name) VALUES ('clubLogo', 'emblem.png') RETURNING id`).Scan(&logoID))
	s.Require().NoError(s.postgres.DB.QueryRow(
		`INSERT INTO club (logo_id) VALUES ($1) RETURNING id`, logoID).Scan(&clubID))
	s.Require().NoError(s.postgres.DB.QueryRow(
		`INSERT INTO team (short_name, club_id) VALUES ('Home', $1) RETURNING id`, clubID).Scan(&s.teamA))
	s.Require().NoError(s.postgres.DB.QueryRow(
		`INSERT INTO team (short_name, club_id) VALUES ('Away', NULL) RETURNING id`).Scan(&s.teamB))
}

func (s *PostgresGameSuite) seedGame(start time.Time, objectStatus string) id.GameID {
	var gameID int64
	s.Require().NoError(s.postgres.DB.QueryRow(`
		INSERT INTO game (date_start, date_update, team1_id, team2_id, tour_id, object_status)
		VALUES ($1, $1, $2, $3, $4, $5) RETURNING id
	`, start, s.teamA, s.teamB, s.tourID, objectStatus).Scan(&gameID))
	return id.GameID(gameID)
}

func (s *PostgresGameSuite) seedReferee(surname, name string) id.RefereeID {
	var refereeID int64
	s.Require().NoError(s.postgres.DB.QueryRow(
		`INSERT INTO referee (surname, name) VALUES ($1, $2) RETURNING id`,
		surname, name).Scan(&refereeID))
	return id.RefereeID(refereeID)
}

func (s *PostgresGameSuite) assign(gameID id.GameID, refereeID id.RefereeID, position string) {
	_, err := s.postgres.DB.Exec(
		`INSERT INTO game_referee (game_id, referee_id, position) VALUES ($1, $2, $3)`,
		int64(gameID), int64(refereeID), position)
	s.Require().NoError(err)
}

func (s *PostgresGameSuite) TestListForReferees() {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	referee := s.seedReferee("Ivanov", "Ivan")
	early := s.seedGame(base, "active")
	late := s.seedGame(base.Add(24*time.Hour), "archived")
	deleted := s.seedGame(base.Add(48*time.Hour), "deleted")
	s.assign(early, referee, "referee")
	s.assign(late, referee, "referee")
	s.assign(deleted, referee, "referee")

	list, total, err := s.store.ListForReferees(ctx, []id.RefereeID{referee}, 1, 20)
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Require().Len(list, 2)

	// Deleted games filtered, newest first.
	s.Equal(late, list[0].ID)
	s.Equal(early, list[1].ID)

	// Joined reference data landed on the row.
	s.Equal("Home", list[0].Team1.Name)
	s.Require().NotNil(list[0].Team1.Logo)
	s.Equal("clubLogo", list[0].Team1.Logo.Module)
	s.Nil(list[0].Team2.Logo)
	s.Require().NotNil(list[0].Tournament)
	s.Equal("Championship", list[0].Tournament.Name)
	s.Require().NotNil(list[0].Group)
	s.Equal("Group A", list[0].Group.Name)
	s.Nil(list[0].Stadium)
}

func (s *PostgresGameSuite) TestListForRefereesPagination() {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	referee := s.seedReferee("Petrov", "Pyotr")
	for i := 0; i < 5; i++ {
		gameID := s.seedGame(base.Add(time.Duration(i)*time.Hour), "active")
		s.assign(gameID, referee, "referee")
	}

	list, total, err := s.store.ListForReferees(ctx, []id.RefereeID{referee}, 2, 2)
	s.Require().NoError(err)
	s.Equal(5, total)
	s.Len(list, 2)
}

func (s *PostgresGameSuite) TestLastUpdated() {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	gameID := s.seedGame(base, "active")
	updated, err := s.store.LastUpdated(ctx, []id.GameID{gameID, 99999})
	s.Require().NoError(err)
	s.Require().Len(updated, 1)
	s.WithinDuration(base, updated[gameID], time.Second)
}

func (s *PostgresGameSuite) TestRefereesForGame() {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.Run("unknown game yields not found", func() {
		_, err := s.store.RefereesForGame(ctx, 99999)
		s.Error(err)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns the roster in assignment order", func() {
		gameID := s.seedGame(base, "active")
		first := s.seedReferee("Ivanov", "Ivan")
		second := s.seedReferee("Petrov", "Pyotr")
		s.assign(gameID, first, "referee")
		s.assign(gameID, second, "linesman 2")

		roster, err := s.store.RefereesForGame(ctx, gameID)
		s.Require().NoError(err)
		s.Require().Len(roster, 2)
		s.Equal(first, roster[0].RefereeID)
		s.Equal("referee", roster[0].Position)
		s.Equal(second, roster[1].RefereeID)
		s.Equal("linesman 2", roster[1].Position)
	})
}
