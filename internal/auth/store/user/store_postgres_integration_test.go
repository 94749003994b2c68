//go:build integration

package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"arbiter/internal/auth/models"
	"arbiter/internal/auth/store/user"
	id "arbiter/pkg/domain"
	"arbiter/pkg/platform/sentinel"
	"arbiter/pkg/testutil/containers"
)

type PostgresUserSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *user.PostgresStore
}

func TestPostgresUserSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserSuite))
}

func (s *PostgresUserSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = user.NewPostgres(s.postgres.DB)
}

func (s *PostgresUserSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "user"))
}

func (s *PostgresUserSuite) seedUser(phone string, status models.UserStatus) id.UserID {
	userID := id.UserID(uuid.New())
	_, err := s.postgres.DB.Exec(`
		INSERT INTO "user" (id, phone, password_hash, status) VALUES ($1, $2, $3, $4)
	`, userID.String(), phone, "hash", string(status))
	s.Require().NoError(err)
	return userID
}

func (s *PostgresUserSuite) TestFindByPhone() {
	ctx := context.Background()

	s.Run("resolves an existing account", func() {
		userID := s.seedUser("79990000001", models.UserStatusActive)

		found, err := s.store.FindByPhone(ctx, "79990000001")
		s.NoError(err)
		s.Equal(userID, found.ID)
		s.Equal(models.UserStatusActive, found.Status)
		s.True(found.CanAuthenticate())
	})

	s.Run("unknown phone yields not found", func() {
		_, err := s.store.FindByPhone(ctx, "79990009999")
		s.Error(err)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresUserSuite) TestFindByID() {
	ctx := context.Background()

	s.Run("resolves by identifier", func() {
		userID := s.seedUser("79990000002", models.UserStatusBlocked)

		found, err := s.store.FindByID(ctx, userID)
		s.NoError(err)
		s.Equal("79990000002", found.Phone)
		s.False(found.CanAuthenticate())
	})

	s.Run("unknown id yields not found", func() {
		_, err := s.store.FindByID(ctx, id.UserID(uuid.New()))
		s.Error(err)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
