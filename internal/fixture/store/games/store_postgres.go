package games

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"arbiter/internal/fixture/models"
	id "arbiter/pkg/domain"
	"arbiter/pkg/platform/sentinel"
)

// PostgresStore reads games and reference data from the fixture database.
// All queries are read-only; fixture rows are owned upstream.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a fixture store over the given database handle.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// visibleStatuses enumerates every ObjectStatus variant that appears in
// listings. Built from the variant so a new status forces a decision in
// models.Visible rather than silently changing query results.
func visibleStatuses() []string {
	all := []models.ObjectStatus{
		models.StatusActive,
		models.StatusNew,
		models.StatusArchived,
		models.StatusDeleted,
	}
	var out []string
	for _, s := range all {
		if s.Visible() {
			out = append(out, string(s))
		}
	}
	return out
}

const assignedGamesQuery = `
	SELECT g.id, g.date_start, g.date_update, g.status,
	       g.score_team1, g.score_team2,
	       t1.id, t1.short_name, f1.id, f1.module, f1.name,
	       t2.id, t2.short_name, f2.id, f2.module, f2.name,
	       s.id, s.name,
	       tn.id, tn.short_name,
	       gr.id, gr.name
	FROM game g
	JOIN team t1 ON t1.id = g.team1_id
	LEFT JOIN club c1 ON c1.id = t1.club_id
	LEFT JOIN file f1 ON f1.id = c1.logo_id
	JOIN team t2 ON t2.id = g.team2_id
	LEFT JOIN club c2 ON c2.id = t2.club_id
	LEFT JOIN file f2 ON f2.id = c2.logo_id
	LEFT JOIN stadium s ON s.id = g.stadium_id
	JOIN tour tr ON tr.id = g.tour_id
	LEFT JOIN tournament tn ON tn.id = tr.tournament_id
	LEFT JOIN "group" gr ON gr.id = tr.group_id
	WHERE g.object_status = ANY($1)
	  AND EXISTS (
	      SELECT 1 FROM game_referee ga
	      WHERE ga.game_id = g.id AND ga.referee_id = ANY($2)
	  )
	ORDER BY g.date_start DESC NULLS LAST
	LIMIT $3 OFFSET $4
`

const assignedGamesCountQuery = `
	SELECT COUNT(*)
	FROM game g
	WHERE g.object_status = ANY($1)
	  AND EXISTS (
	      SELECT 1 FROM game_referee ga
	      WHERE ga.game_id = g.id AND ga.referee_id = ANY($2)
	  )
`

// ListForReferees returns the page of visible games where any of the given
// referees has an assignment, ordered by start time descending, plus the
// total match count. The page and the count run as parallel queries.
func (s *PostgresStore) ListForReferees(ctx context.Context, refereeIDs []id.RefereeID, page, limit int) ([]models.AssignedGame, int, error) {
	if len(refereeIDs) == 0 {
		return nil, 0, nil
	}

	ids := make([]int64, len(refereeIDs))
	for i, rid := range refereeIDs {
		ids[i] = int64(rid)
	}
	statuses := pq.Array(visibleStatuses())
	offset := (page - 1) * limit

	var (
		games []models.AssignedGame
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.db.QueryContext(gctx, assignedGamesQuery, statuses, pq.Array(ids), limit, offset)
		if err != nil {
			return fmt.Errorf("list assigned games: %w", err)
		}
		defer rows.Close()
		games, err = scanAssignedGames(rows)
		return err
	})
	g.Go(func() error {
		if err := s.db.QueryRowContext(gctx, assignedGamesCountQuery, statuses, pq.Array(ids)).Scan(&total); err != nil {
			return fmt.Errorf("count assigned games: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return games, total, nil
}

func scanAssignedGames(rows *sql.Rows) ([]models.AssignedGame, error) {
	var out []models.AssignedGame
	for rows.Next() {
		var (
			game           models.AssignedGame
			dateStart      sql.NullTime
			score1, score2 sql.NullInt64
			t1Logo, t2Logo nullFileRef
			stadiumID      sql.NullInt64
			stadiumName    sql.NullString
			tournamentID   sql.NullInt64
			tournamentName sql.NullString
			groupID        sql.NullInt64
			groupName      sql.NullString
		)
		err := rows.Scan(
			&game.ID, &dateStart, &game.DateUpdate, &game.Status,
			&score1, &score2,
			&game.Team1.ID, &game.Team1.Name, &t1Logo.id, &t1Logo.module, &t1Logo.name,
			&game.Team2.ID, &game.Team2.Name, &t2Logo.id, &t2Logo.module, &t2Logo.name,
			&stadiumID, &stadiumName,
			&tournamentID, &tournamentName,
			&groupID, &groupName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assigned game: %w", err)
		}

		if dateStart.Valid {
			game.DateStart = dateStart.Time
		}
		game.ScoreTeam1 = intPtr(score1)
		game.ScoreTeam2 = intPtr(score2)
		game.Team1.Logo = t1Logo.ref()
		game.Team2.Logo = t2Logo.ref()
		if stadiumID.Valid {
			game.Stadium = &models.StadiumRef{ID: id.StadiumID(stadiumID.Int64), Name: stadiumName.String}
		}
		if tournamentID.Valid {
			game.Tournament = &models.TournamentRef{ID: id.TournamentID(tournamentID.Int64), Name: tournamentName.String}
		}
		if groupID.Valid {
			game.Group = &models.GroupRef{ID: id.GroupID(groupID.Int64), Name: groupName.String}
		}
		out = append(out, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assigned games: %w", err)
	}
	return out, nil
}

// LastUpdated returns the last-modified timestamp per game in one round
// trip. Games missing from the result were not found.
func (s *PostgresStore) LastUpdated(ctx context.Context, gameIDs []id.GameID) (map[id.GameID]time.Time, error) {
	if len(gameIDs) == 0 {
		return map[id.GameID]time.Time{}, nil
	}
	ids := make([]int64, len(gameIDs))
	for i, gid := range gameIDs {
		ids[i] = int64(gid)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date_update FROM game WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query game timestamps: %w", err)
	}
	defer rows.Close()

	out := make(map[id.GameID]time.Time, len(gameIDs))
	for rows.Next() {
		var (
			gid     int64
			updated time.Time
		)
		if err := rows.Scan(&gid, &updated); err != nil {
			return nil, fmt.Errorf("scan game timestamp: %w", err)
		}
		out[id.GameID(gid)] = updated
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game timestamps: %w", err)
	}
	return out, nil
}

// RefereesForGame returns the assigned referees for a game with their
// position labels and photo references.
func (s *PostgresStore) RefereesForGame(ctx context.Context, gameID id.GameID) ([]models.RosterEntry, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM game WHERE id = $1)`, int64(gameID)).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check game exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("game %d: %w", gameID, sentinel.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.surname, r.name, r.patronymic, ga.position,
		       f.id, f.module, f.name
		FROM game_referee ga
		JOIN referee r ON r.id = ga.referee_id
		LEFT JOIN file f ON f.id = r.photo_id
		WHERE ga.game_id = $1
		ORDER BY ga.id
	`, int64(gameID))
	if err != nil {
		return nil, fmt.Errorf("query game referees: %w", err)
	}
	defer rows.Close()

	var out []models.RosterEntry
	for rows.Next() {
		var (
			entry      models.RosterEntry
			patronymic sql.NullString
			position   sql.NullString
			photo      nullFileRef
		)
		err := rows.Scan(&entry.RefereeID, &entry.Surname, &entry.Name, &patronymic,
			&position, &photo.id, &photo.module, &photo.name)
		if err != nil {
			return nil, fmt.Errorf("scan game referee: %w", err)
		}
		entry.Patronymic = patronymic.String
		entry.Position = position.String
		entry.Photo = photo.ref()
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game referees: %w", err)
	}
	return out, nil
}

// nullFileRef scans an optional LEFT JOINed file row.
type nullFileRef struct {
	id     sql.NullInt64
	module sql.NullString
	name   sql.NullString
}

func (n nullFileRef) ref() *models.FileRef {
	if !n.id.Valid {
		return nil
	}
	return &models.FileRef{
		ID:     id.FileID(n.id.Int64),
		Module: n.module.String,
		Name:   n.name.String,
	}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
