package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mesada/internal/domain/profile"
	"mesada/internal/shared/apperr"
	"mesada/internal/shared/auth"
)

// ProfileWriter is the part of the profile store the gateway writes to.
type ProfileWriter interface {
	Create(ctx context.Context, params profile.CreateParams) (*profile.Profile, error)
	SetPasswordResetRequired(ctx context.Context, id uuid.UUID, required bool) error
}

// Result reports the outcome of a gateway call. Error is nil on success.
type Result struct {
	Success    bool
	Error      error
	Identity   *Identity
	Credential *Credential
}

func failed(err error) Result {
	return Result{Success: false, Error: err}
}

// Gateway wraps the identity provider and reports every session
// transition to its listener. No call is retried.
type Gateway struct {
	provider Provider
	profiles ProfileWriter
	listener Listener
	log      zerolog.Logger
}

func NewGateway(provider Provider, profiles ProfileWriter, listener Listener, log zerolog.Logger) *Gateway {
	return &Gateway{provider: provider, profiles: profiles, listener: listener, log: log}
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) Result {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return failed(apperr.NewValidationError("", "email and password are required"))
	}

	ident, cred, err := g.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return failed(err)
	}

	g.emit(ctx, Change{Event: EventSignedIn, Identity: ident, Credential: cred})
	return Result{Success: true, Identity: ident, Credential: cred}
}

// SignUp creates the identity and its profile with the default role, then
// signs the new user in. If the profile cannot be written the identity is
// deleted again and the failed step is reported.
func (g *Gateway) SignUp(ctx context.Context, email, password, name string) Result {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := checkmail.ValidateFormat(email); err != nil {
		return failed(apperr.NewValidationError("email", "is invalid"))
	}
	if len(password) < auth.MinPasswordLength {
		return failed(apperr.NewValidationError("password", auth.ErrPasswordTooShort.Error()))
	}
	if name == "" {
		return failed(apperr.NewValidationError("name", "is required"))
	}

	ident, err := g.provider.CreateUser(ctx, email, password)
	if err != nil {
		return failed(apperr.Step("create identity", err))
	}

	_, err = g.profiles.Create(ctx, profile.CreateParams{
		ID:    ident.ID,
		Name:  name,
		Email: ident.Email,
		Role:  profile.DefaultSignUpRole,
	})
	if err != nil {
		if delErr := g.provider.DeleteUser(ctx, ident.ID); delErr != nil {
			g.log.Error().Err(delErr).Str("user_id", ident.ID.String()).Msg("Failed to delete orphaned identity after sign-up")
		}
		return failed(apperr.Step("insert profile", err))
	}

	ident, cred, err := g.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return failed(apperr.Step("sign in", err))
	}

	g.emit(ctx, Change{Event: EventSignedIn, Identity: ident, Credential: cred})
	return Result{Success: true, Identity: ident, Credential: cred}
}

// SignOut revokes the provider session and clears the local one.
func (g *Gateway) SignOut(ctx context.Context, accessToken string) Result {
	_, cred, err := g.provider.Resolve(ctx, accessToken)
	if err != nil {
		return failed(err)
	}
	if err := g.provider.SignOut(ctx, accessToken); err != nil {
		return failed(err)
	}

	g.emit(ctx, Change{Event: EventSignedOut, Credential: cred})
	return Result{Success: true}
}

// Refresh exchanges a refresh token for a new credential pair.
func (g *Gateway) Refresh(ctx context.Context, refreshToken string) Result {
	if refreshToken == "" {
		return failed(apperr.NewValidationError("refresh_token", "is required"))
	}

	ident, cred, err := g.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return failed(err)
	}

	g.emit(ctx, Change{Event: EventTokenRefreshed, Identity: ident, Credential: cred})
	return Result{Success: true, Identity: ident, Credential: cred}
}

// ChangePassword replaces the caller's password and clears any pending
// forced reset.
func (g *Gateway) ChangePassword(ctx context.Context, ident Identity, currentPassword, newPassword string) Result {
	if len(newPassword) < auth.MinPasswordLength {
		return failed(apperr.NewValidationError("new_password", auth.ErrPasswordTooShort.Error()))
	}
	if newPassword == currentPassword {
		return failed(apperr.NewValidationError("new_password", "must differ from the current password"))
	}

	if err := g.provider.ChangePassword(ctx, ident.ID, currentPassword, newPassword); err != nil {
		return failed(err)
	}
	if err := g.profiles.SetPasswordResetRequired(ctx, ident.ID, false); err != nil {
		return failed(apperr.Step("clear password reset", err))
	}

	g.emit(ctx, Change{Event: EventUserUpdated, Identity: &ident})
	return Result{Success: true, Identity: &ident}
}

func (g *Gateway) emit(ctx context.Context, change Change) {
	if g.listener != nil {
		g.listener.OnChange(ctx, change)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAuthError reports whether err means the caller is not authenticated.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrSessionRevoked) ||
		errors.Is(err, auth.ErrExpiredToken) ||
		errors.Is(err, auth.ErrInvalidToken)
}
