package adapters

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbiter/internal/auth/models"
	"arbiter/internal/auth/store/user"
	"arbiter/internal/identity/store/link"
	id "arbiter/pkg/domain"
)

func TestPhoneForReferee(t *testing.T) {
	ctx := context.Background()
	links := link.NewInMemory()
	users := user.NewInMemory()
	adapter := NewContactAdapter(links, users)

	userID := id.UserID(uuid.New())
	require.NoError(t, users.Create(ctx, &models.User{
		ID:     userID,
		Phone:  "79990000001",
		Status: models.UserStatusActive,
	}))
	require.NoError(t, links.Link(ctx, userID, 100))

	t.Run("linked referee resolves the account phone", func(t *testing.T) {
		phone, err := adapter.PhoneForReferee(ctx, 100)
		assert.NoError(t, err)
		assert.Equal(t, "79990000001", phone)
	})

	t.Run("unlinked referee yields empty phone without error", func(t *testing.T) {
		phone, err := adapter.PhoneForReferee(ctx, 999)
		assert.NoError(t, err)
		assert.Empty(t, phone)
	})

	t.Run("link to a missing account yields empty phone", func(t *testing.T) {
		require.NoError(t, links.Link(ctx, id.UserID(uuid.New()), 101))

		phone, err := adapter.PhoneForReferee(ctx, 101)
		assert.NoError(t, err)
		assert.Empty(t, phone)
	})
}
