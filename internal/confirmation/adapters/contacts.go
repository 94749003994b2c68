// Package adapters bridges the confirmation service's collaborator
// interfaces onto other domains' stores without letting those domains leak
// into the service.
package adapters

import (
	"context"
	"errors"

	authmodels "arbiter/internal/auth/models"
	id "arbiter/pkg/domain"
	"arbiter/pkg/platform/sentinel"
)

// LinkResolver resolves a referee's linked platform account.
type LinkResolver interface {
	UserForReferee(ctx context.Context, refereeID id.RefereeID) (id.UserID, error)
}

// UserFinder resolves user accounts.
type UserFinder interface {
	FindByID(ctx context.Context, userID id.UserID) (*authmodels.User, error)
}

// ContactAdapter implements the confirmation service's ContactDirectory by
// chaining the referee link to the linked account's phone number.
type ContactAdapter struct {
	links LinkResolver
	users UserFinder
}

// NewContactAdapter constructs a contact directory over identity stores.
func NewContactAdapter(links LinkResolver, users UserFinder) *ContactAdapter {
	return &ContactAdapter{links: links, users: users}
}

// PhoneForReferee returns the phone of the referee's linked account, or
// empty when the referee has no account.
func (a *ContactAdapter) PhoneForReferee(ctx context.Context, refereeID id.RefereeID) (string, error) {
	userID, err := a.links.UserForReferee(ctx, refereeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.Phone, nil
}
