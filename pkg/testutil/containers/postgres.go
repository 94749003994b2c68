//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema holds both databases' tables in one test instance: the identity
// side (user, referee_user_map, referee_games_confirmation) and the fixture
// side (game, team, referee, and their reference tables).
const schema = `
CREATE TABLE "user" (
	id            UUID PRIMARY KEY,
	phone         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'active',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE referee_user_map (
	id         BIGSERIAL PRIMARY KEY,
	user_id    UUID NOT NULL,
	referee_id BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX referee_user_map_referee_active
	ON referee_user_map (referee_id) WHERE deleted_at IS NULL;

CREATE TABLE referee_games_confirmation (
	id         BIGSERIAL PRIMARY KEY,
	referee_id BIGINT NOT NULL,
	game_id    BIGINT NOT NULL,
	user_id    UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	updated_by UUID,
	deleted_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX referee_games_confirmation_active
	ON referee_games_confirmation (game_id, referee_id) WHERE deleted_at IS NULL;

CREATE TABLE file (
	id     BIGSERIAL PRIMARY KEY,
	module TEXT NOT NULL,
	name   TEXT NOT NULL
);

CREATE TABLE club (
	id      BIGSERIAL PRIMARY KEY,
	logo_id BIGINT REFERENCES file (id)
);

CREATE TABLE team (
	id         BIGSERIAL PRIMARY KEY,
	short_name TEXT NOT NULL,
	club_id    BIGINT REFERENCES club (id)
);

CREATE TABLE stadium (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE tournament (
	id         BIGSERIAL PRIMARY KEY,
	short_name TEXT NOT NULL
);

CREATE TABLE "group" (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE tour (
	id            BIGSERIAL PRIMARY KEY,
	tournament_id BIGINT REFERENCES tournament (id),
	group_id      BIGINT REFERENCES "group" (id)
);

CREATE TABLE game (
	id            BIGSERIAL PRIMARY KEY,
	date_start    TIMESTAMPTZ,
	date_update   TIMESTAMPTZ NOT NULL DEFAULT now(),
	status        INT NOT NULL DEFAULT 0,
	score_team1   INT,
	score_team2   INT,
	team1_id      BIGINT NOT NULL REFERENCES team (id),
	team2_id      BIGINT NOT NULL REFERENCES team (id),
	stadium_id    BIGINT REFERENCES stadium (id),
	tour_id       BIGINT NOT NULL REFERENCES tour (id),
	object_status TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE referee (
	id         BIGSERIAL PRIMARY KEY,
	surname    TEXT NOT NULL,
	name       TEXT NOT NULL,
	patronymic TEXT,
	photo_id   BIGINT REFERENCES file (id)
);

CREATE TABLE game_referee (
	id         BIGSERIAL PRIMARY KEY,
	game_id    BIGINT NOT NULL REFERENCES game (id),
	referee_id BIGINT NOT NULL REFERENCES referee (id),
	position   TEXT
);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

func newPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("arbiter_test"),
		tcpostgres.WithUsername("arbiter"),
		tcpostgres.WithPassword("arbiter"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	// Shared across suites; Ryuk terminates the container after the run.
	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// TruncateTables empties the given tables and resets their sequences. Use
// between tests to ensure isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = `"` + table + `"`
	}
	_, err := p.DB.ExecContext(ctx,
		fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", ")))
	return err
}
