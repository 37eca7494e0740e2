package identity

import (
	"context"

	"github.com/google/uuid"
)

// Provider is the remote identity service: password users and their sessions.
type Provider interface {
	CreateUser(ctx context.Context, email, password string) (*Identity, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, *Credential, error)
	Refresh(ctx context.Context, refreshToken string) (*Identity, *Credential, error)
	SignOut(ctx context.Context, accessToken string) error
	// Resolve validates an access token and returns its identity.
	Resolve(ctx context.Context, accessToken string) (*Identity, *Credential, error)
	ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error
}

// Listener receives session transitions.
type Listener interface {
	OnChange(ctx context.Context, change Change)
}
