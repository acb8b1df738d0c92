package identity

import "github.com/dimitrije/gatekeeper/internal/models"

type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventUserUpdated    EventType = "USER_UPDATED"
)

// Event is an auth-state change pushed by the provider. Session is nil for
// sign-out; UserID names the affected user in every case.
type Event struct {
	Type    EventType
	UserID  string
	Session *models.Session
}

// User returns the session owner, if any.
func (e Event) User() *models.RawUser {
	if e.Session == nil {
		return nil
	}
	return e.Session.User
}

// Subscription is the handle returned by OnAuthStateChange. Once Unsubscribe
// returns no new callback invocation starts.
type Subscription interface {
	Unsubscribe()
}
