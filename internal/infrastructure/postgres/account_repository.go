package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AccountRepository runs account-wide operations that span every table.
type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// DeleteUserAndData removes the account, its dependents and all rows they
// own through the delete_user_and_data database function.
func (r *AccountRepository) DeleteUserAndData(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `SELECT delete_user_and_data($1)`, userID); err != nil {
		return fmt.Errorf("failed to delete user data: %w", err)
	}
	return nil
}
