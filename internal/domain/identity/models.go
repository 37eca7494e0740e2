package identity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrIdentityNotFound   = errors.New("identity not found")
)

// Identity is the provider-owned user record.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Credential is the bearer/refresh pair issued for one provider session.
type Credential struct {
	SessionID    uuid.UUID `json:"-"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

type Event string

const (
	EventSignedIn       Event = "signed_in"
	EventTokenRefreshed Event = "token_refreshed"
	EventSignedOut      Event = "signed_out"
	EventUserUpdated    Event = "user_updated"
	// EventAccountDeleted ends every session of Identity.
	EventAccountDeleted Event = "account_deleted"
)

// Change is a session transition reported by the gateway. Identity is nil
// when the session ended.
type Change struct {
	Event      Event
	Identity   *Identity
	Credential *Credential
}
