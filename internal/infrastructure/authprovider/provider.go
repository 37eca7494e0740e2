// Package authprovider is the password identity service: users with bcrypt
// hashes, refreshable sessions and HS256 access tokens.
package authprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mesada/internal/domain/identity"
	"mesada/internal/shared/auth"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is one sign-in. Its refresh token is stored hashed.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
}

func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}

// Store persists users and sessions.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	CreateSession(ctx context.Context, userID uuid.UUID, refreshHash string, expiresAt time.Time) (*Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	// RotateSession swaps the refresh hash of an active session. It returns
	// identity.ErrSessionRevoked when no active session holds oldHash.
	RotateSession(ctx context.Context, oldHash, newHash string, expiresAt, now time.Time) (*Session, error)
	RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Provider struct {
	store      Store
	tokens     *auth.JWT
	refreshTTL time.Duration
	now        func() time.Time
}

func New(store Store, tokens *auth.JWT, refreshTTL time.Duration) *Provider {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &Provider{store: store, tokens: tokens, refreshTTL: refreshTTL, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) CreateUser(ctx context.Context, email, password string) (*identity.Identity, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := p.store.CreateUser(ctx, normalizeEmail(email), hash)
	if err != nil {
		return nil, err
	}
	return &identity.Identity{ID: u.ID, Email: u.Email}, nil
}

func (p *Provider) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return p.store.DeleteUser(ctx, id)
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Identity, *identity.Credential, error) {
	u, err := p.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, identity.ErrIdentityNotFound) {
		return nil, nil, identity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, nil, identity.ErrInvalidCredentials
	}

	refresh, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, nil, err
	}
	sess, err := p.store.CreateSession(ctx, u.ID, auth.HashToken(refresh), p.now().Add(p.refreshTTL))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	ident := &identity.Identity{ID: u.ID, Email: u.Email}
	cred, err := p.credential(ident, sess.ID, refresh)
	if err != nil {
		return nil, nil, err
	}
	return ident, cred, nil
}

// Refresh rotates the refresh token and issues a new access token for the
// same session.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*identity.Identity, *identity.Credential, error) {
	next, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, nil, err
	}

	now := p.now()
	sess, err := p.store.RotateSession(ctx, auth.HashToken(refreshToken), auth.HashToken(next), now.Add(p.refreshTTL), now)
	if err != nil {
		return nil, nil, err
	}

	u, err := p.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}

	ident := &identity.Identity{ID: u.ID, Email: u.Email}
	cred, err := p.credential(ident, sess.ID, next)
	if err != nil {
		return nil, nil, err
	}
	return ident, cred, nil
}

func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.tokens.Validate(accessToken)
	if err != nil {
		return err
	}
	return p.store.RevokeSession(ctx, claims.SessionID, p.now())
}

// Resolve validates an access token and checks its session is still active.
func (p *Provider) Resolve(ctx context.Context, accessToken string) (*identity.Identity, *identity.Credential, error) {
	claims, err := p.tokens.Validate(accessToken)
	if err != nil {
		return nil, nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, auth.ErrInvalidToken
	}

	sess, err := p.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.UserID != userID || sess.RevokedAt != nil {
		return nil, nil, identity.ErrSessionRevoked
	}

	cred := &identity.Credential{
		SessionID:   sess.ID,
		AccessToken: accessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
	}
	return &identity.Identity{ID: userID, Email: claims.Email}, cred, nil
}

func (p *Provider) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error {
	u, err := p.store.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(u.PasswordHash, currentPassword); err != nil {
		return identity.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return p.store.UpdatePassword(ctx, id, hash)
}

func (p *Provider) credential(ident *identity.Identity, sessionID uuid.UUID, refresh string) (*identity.Credential, error) {
	access, expiresAt, err := p.tokens.Generate(ident.ID, sessionID, ident.Email)
	if err != nil {
		return nil, err
	}
	return &identity.Credential{
		SessionID:    sessionID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}
