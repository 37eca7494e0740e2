package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mesada/internal/domain/identity"
	"mesada/internal/domain/profile"
)

const profileColumns = `id, name, email, role, password_reset_required, created_at`

// ProfileRepository implements profile.Repository for PostgreSQL
type ProfileRepository struct {
	db *DB
}

func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*profile.Profile, error) {
	var p profile.Profile
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.PasswordResetRequired, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, params profile.CreateParams) (*profile.Profile, error) {
	return insertProfile(ctx, r.db.QueryRowContext, params)
}

type queryRowFunc func(ctx context.Context, query string, args ...any) *tracedRow

func insertProfile(ctx context.Context, queryRow queryRowFunc, params profile.CreateParams) (*profile.Profile, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO profiles (id, name, email, role, password_reset_required)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + profileColumns

	p, err := scanProfile(queryRow(ctx, query, params.ID, params.Name, params.Email, params.Role, params.PasswordResetRequired))
	if IsUniqueViolation(err) {
		return nil, identity.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profile.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// UpdateName renames the profile and, for dependents, the children row.
func (r *ProfileRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*profile.Profile, error) {
	var p *profile.Profile
	err := r.db.WithinTx(ctx, func(tx *Tx) error {
		query := `UPDATE profiles SET name = $2 WHERE id = $1 RETURNING ` + profileColumns

		var err error
		p, err = scanProfile(tx.QueryRowContext(ctx, query, id, name))
		if errors.Is(err, sql.ErrNoRows) {
			return profile.ErrProfileNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE children SET name = $2 WHERE id = $1`, id, name); err != nil {
			return fmt.Errorf("failed to update dependent name: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) SetPasswordResetRequired(ctx context.Context, id uuid.UUID, required bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET password_reset_required = $2 WHERE id = $1`,
		id, required,
	)
	if err != nil {
		return fmt.Errorf("failed to update password reset flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return profile.ErrProfileNotFound
	}
	return nil
}

// ListByRole returns every profile holding role, oldest first.
func (r *ProfileRepository) ListByRole(ctx context.Context, role profile.Role) ([]*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*profile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
