package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mesada/internal/domain/identity"
	"mesada/internal/infrastructure/authprovider"
)

// AuthRepository implements authprovider.Store over auth_users and auth_sessions.
type AuthRepository struct {
	db *DB
}

func NewAuthRepository(db *DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) CreateUser(ctx context.Context, email, passwordHash string) (*authprovider.User, error) {
	var u authprovider.User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO auth_users (email, password_hash) VALUES ($1, $2)
		 RETURNING id, email, password_hash, created_at`,
		email, passwordHash,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if IsUniqueViolation(err) {
		return nil, identity.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func (r *AuthRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *AuthRepository) getUser(ctx context.Context, where string, arg any) (*authprovider.User, error) {
	var u authprovider.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM auth_users WHERE `+where+` = $1`,
		arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*authprovider.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *AuthRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*authprovider.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *AuthRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE auth_users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return identity.ErrIdentityNotFound
	}
	return nil
}

func scanSession(row rowScanner) (*authprovider.Session, error) {
	var s authprovider.Session
	var revokedAt sql.NullTime
	if err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &revokedAt); err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	return &s, nil
}

func (r *AuthRepository) CreateSession(ctx context.Context, userID uuid.UUID, refreshHash string, expiresAt time.Time) (*authprovider.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx,
		`INSERT INTO auth_sessions (user_id, refresh_token_hash, expires_at) VALUES ($1, $2, $3)
		 RETURNING id, user_id, expires_at, revoked_at`,
		userID, refreshHash, expiresAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

func (r *AuthRepository) GetSession(ctx context.Context, id uuid.UUID) (*authprovider.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, revoked_at FROM auth_sessions WHERE id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (r *AuthRepository) RotateSession(ctx context.Context, oldHash, newHash string, expiresAt, now time.Time) (*authprovider.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, `
		UPDATE auth_sessions
		SET refresh_token_hash = $2, expires_at = $3
		WHERE refresh_token_hash = $1 AND revoked_at IS NULL AND expires_at > $4
		RETURNING id, user_id, expires_at, revoked_at
	`, oldHash, newHash, expiresAt, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrSessionRevoked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}
	return s, nil
}

func (r *AuthRepository) RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE auth_sessions SET revoked_at = COALESCE(revoked_at, $2) WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that can no longer be refreshed.
func (r *AuthRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < $1 OR revoked_at < $1 - INTERVAL '1 day'`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
