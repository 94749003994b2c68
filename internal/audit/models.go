// Package audit captures key domain actions as events. Publishers fan them
// out; domain logic only ever sees the Publisher interface.
package audit

import (
	"time"

	id "arbiter/pkg/domain"
)

// Event is emitted from domain logic to capture a key action. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Action    Action
	Timestamp time.Time
	UserID    id.UserID
	RefereeID id.RefereeID
	GameID    id.GameID
	RequestID string
	ClientIP  string
	UserAgent string
	Reason    string
}

// Action names the audited operation.
type Action string

const (
	// Confirmation lifecycle
	ActionConfirmationGranted     Action = "confirmation_granted"
	ActionConfirmationRevoked     Action = "confirmation_revoked"
	ActionConfirmationInvalidated Action = "confirmation_invalidated"

	// Auth
	ActionLoginSucceeded Action = "login_succeeded"
	ActionLoginFailed    Action = "login_failed"
	ActionLogout         Action = "logout"
)
