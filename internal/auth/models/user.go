// Package models defines platform user accounts in the identity database.
package models

import (
	"time"

	id "arbiter/pkg/domain"
)

// UserStatus marks whether an account may authenticate.
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User is a platform account. Phone is the login identifier; referees link
// to their account through the identity store's referee_user_map.
type User struct {
	ID           id.UserID
	Phone        string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
}

// CanAuthenticate reports whether the account may obtain tokens.
func (u *User) CanAuthenticate() bool {
	return u.Status == UserStatusActive
}
