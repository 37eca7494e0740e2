package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/medal"
	"mesada/internal/domain/transaction"
)

const medalColumns = `id, child_id, name, description, achieved_at, prize_amount`

// MedalRepository implements medal.Repository for PostgreSQL
type MedalRepository struct {
	db *DB
}

func NewMedalRepository(db *DB) *MedalRepository {
	return &MedalRepository{db: db}
}

func scanMedal(row rowScanner) (*medal.Medal, error) {
	var m medal.Medal
	if err := row.Scan(&m.ID, &m.ChildID, &m.Name, &m.Description, &m.AchievedAt, &m.PrizeAmount); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MedalRepository) GetByID(ctx context.Context, id uuid.UUID) (*medal.Medal, error) {
	m, err := scanMedal(r.db.QueryRowContext(ctx, `SELECT `+medalColumns+` FROM medals WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, medal.ErrMedalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medal: %w", err)
	}
	return m, nil
}

func (r *MedalRepository) ListByChildren(ctx context.Context, childIDs []uuid.UUID) ([]*medal.Medal, error) {
	if len(childIDs) == 0 {
		return []*medal.Medal{}, nil
	}

	query := `
		SELECT ` + medalColumns + `
		FROM medals
		WHERE child_id = ANY($1::uuid[])
		ORDER BY achieved_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, uuidArray(childIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list medals: %w", err)
	}
	defer rows.Close()

	medals := []*medal.Medal{}
	for rows.Next() {
		m, err := scanMedal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medal: %w", err)
		}
		medals = append(medals, m)
	}
	return medals, rows.Err()
}

// GrantPrize sets the medal's prize and writes the guardian's debit and the
// child's credit in one transaction.
func (r *MedalRepository) GrantPrize(ctx context.Context, medalID uuid.UUID, amount decimal.Decimal, debit, credit transaction.CreateParams) error {
	return r.db.WithinTx(ctx, func(tx *Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE medals SET prize_amount = $2 WHERE id = $1 AND prize_amount IS NULL`,
			medalID, amount,
		)
		if err != nil {
			return fmt.Errorf("failed to set prize: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rows == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM medals WHERE id = $1)`, medalID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check medal: %w", err)
			}
			if !exists {
				return medal.ErrMedalNotFound
			}
			return medal.ErrPrizeAlreadyGranted
		}

		if _, err := insertTransaction(ctx, tx.QueryRowContext, debit); err != nil {
			return err
		}
		if _, err := insertTransaction(ctx, tx.QueryRowContext, credit); err != nil {
			return err
		}
		return nil
	})
}
