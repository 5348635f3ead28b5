// Package audit captures significant account lifecycle actions as events.
// Recording is fail-open: a broken sink never blocks the business operation.
package audit

import (
	"context"
	"time"
)

// Action names a recorded lifecycle event.
type Action string

const (
	ActionUserRegistered     Action = "user_registered"
	ActionUserApproved       Action = "user_approved"
	ActionUserRejected       Action = "user_rejected"
	ActionRoleChanged        Action = "role_changed"
	ActionUserLogin          Action = "user_login"
	ActionVerificationIssued Action = "verification_issued"
	ActionEmailVerified      Action = "email_verified"
	ActionContentFlagged     Action = "content_flagged"
	ActionProfileUpdated     Action = "profile_updated"
	ActionLoginFailed        Action = "login_failed"
	ActionBannedWordAdded    Action = "banned_word_added"
	ActionBannedWordRemoved  Action = "banned_word_removed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Action    Action
	Timestamp time.Time
	// UserID is the account the action concerns.
	UserID int64
	Email  string
	// ActorID tracks who performed the action when different from UserID,
	// e.g. an admin approving a pending account. Zero means self.
	ActorID int64
	Reason  string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
	// Device describes the client that triggered the action, when known.
	Device string
}

// Recorder accepts events. Implementations must not block the caller on sink
// failures.
type Recorder interface {
	Record(ctx context.Context, event Event)
}
