package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/child"
	"mesada/internal/domain/profile"
)

const childColumns = `id, parent_id, name, allowance_amount, allowance_frequency`

// ChildRepository implements child.Repository for PostgreSQL
type ChildRepository struct {
	db *DB
}

func NewChildRepository(db *DB) *ChildRepository {
	return &ChildRepository{db: db}
}

func scanChild(row rowScanner) (*child.Child, error) {
	var c child.Child
	var frequency sql.NullString
	if err := row.Scan(&c.ID, &c.ParentID, &c.Name, &c.AllowanceAmount, &frequency); err != nil {
		return nil, err
	}
	if frequency.Valid {
		f := child.Frequency(frequency.String)
		c.AllowanceFrequency = &f
	}
	return &c, nil
}

func nullFrequency(f *child.Frequency) sql.NullString {
	if f == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*f), Valid: true}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// Create inserts the dependent's profile and children row in one transaction.
func (r *ChildRepository) Create(ctx context.Context, p profile.CreateParams, c *child.Child) (*child.Child, error) {
	var created *child.Child
	err := r.db.WithinTx(ctx, func(tx *Tx) error {
		if _, err := insertProfile(ctx, tx.QueryRowContext, p); err != nil {
			return err
		}

		query := `
			INSERT INTO children (id, parent_id, name, allowance_amount, allowance_frequency)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + childColumns

		var err error
		created, err = scanChild(tx.QueryRowContext(ctx, query,
			c.ID, c.ParentID, c.Name, c.AllowanceAmount, nullFrequency(c.AllowanceFrequency),
		))
		if err != nil {
			return fmt.Errorf("failed to create dependent: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *ChildRepository) GetByID(ctx context.Context, id uuid.UUID) (*child.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE id = $1`

	c, err := scanChild(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, child.ErrChildNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dependent: %w", err)
	}
	return c, nil
}

func (r *ChildRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*child.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE parent_id = $1 ORDER BY name, created_at`

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependents: %w", err)
	}
	defer rows.Close()

	children := []*child.Child{}
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dependent: %w", err)
		}
		children = append(children, c)
	}
	return children, rows.Err()
}

// Update applies the non-nil fields of params. A rename is mirrored on the
// dependent's profile.
func (r *ChildRepository) Update(ctx context.Context, id uuid.UUID, params child.UpdateParams) (*child.Child, error) {
	var name any
	if params.Name != nil {
		name = *params.Name
	}

	var updated *child.Child
	err := r.db.WithinTx(ctx, func(tx *Tx) error {
		query := `
			UPDATE children
			SET name = COALESCE($2::text, name),
			    allowance_amount = COALESCE($3::numeric, allowance_amount),
			    allowance_frequency = COALESCE($4::text, allowance_frequency)
			WHERE id = $1
			RETURNING ` + childColumns

		var err error
		updated, err = scanChild(tx.QueryRowContext(ctx, query,
			id, name, nullDecimal(params.AllowanceAmount), nullFrequency(params.AllowanceFrequency),
		))
		if errors.Is(err, sql.ErrNoRows) {
			return child.ErrChildNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to update dependent: %w", err)
		}

		if params.Name != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE profiles SET name = $2 WHERE id = $1`, id, name); err != nil {
				return fmt.Errorf("failed to update dependent profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
