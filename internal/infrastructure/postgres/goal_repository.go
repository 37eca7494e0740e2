package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/goal"
	"mesada/internal/domain/transaction"
)

const goalSelect = `
	SELECT g.id, g.child_id, c.parent_id, g.title, g.target_amount, g.current_amount,
	       g.status, g.is_approved, g.created_at
	FROM goals g
	JOIN children c ON c.id = g.child_id
`

// GoalRepository implements goal.Repository for PostgreSQL
type GoalRepository struct {
	db *DB
}

func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func scanGoal(row rowScanner) (*goal.Goal, error) {
	var g goal.Goal
	err := row.Scan(
		&g.ID, &g.ChildID, &g.ParentID, &g.Title, &g.TargetAmount, &g.CurrentAmount,
		&g.Status, &g.IsApproved, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GoalRepository) Create(ctx context.Context, g *goal.Goal) (*goal.Goal, error) {
	query := `
		INSERT INTO goals (id, child_id, title, target_amount, current_amount, status, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	created := *g
	err := r.db.QueryRowContext(ctx, query,
		g.ID, g.ChildID, g.Title, g.TargetAmount, g.CurrentAmount, g.Status, g.IsApproved,
	).Scan(&created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return &created, nil
}

func (r *GoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx, goalSelect+` WHERE g.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goal.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

func (r *GoalRepository) ListByChildren(ctx context.Context, childIDs []uuid.UUID) ([]*goal.Goal, error) {
	if len(childIDs) == 0 {
		return []*goal.Goal{}, nil
	}

	query := goalSelect + `
		WHERE g.child_id = ANY($1::uuid[])
		ORDER BY g.status, g.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, uuidArray(childIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []*goal.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *GoalRepository) Approve(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE goals SET is_approved = TRUE WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to approve goal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, goal.ErrGoalNotFound
	}
	return r.GetByID(ctx, id)
}

// ApplyMovement writes the movement and the goal's new amount and status in
// one transaction. The update only applies while current_amount still equals
// previous; otherwise goal.ErrGoalChanged is returned and nothing is written.
func (r *GoalRepository) ApplyMovement(ctx context.Context, g *goal.Goal, previous decimal.Decimal, movement transaction.CreateParams) (*transaction.Transaction, error) {
	var inserted *transaction.Transaction
	err := r.db.WithinTx(ctx, func(tx *Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE goals
			SET current_amount = $2, status = $3
			WHERE id = $1 AND current_amount = $4
		`, g.ID, g.CurrentAmount, g.Status, previous)
		if err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rows == 0 {
			return goal.ErrGoalChanged
		}

		inserted, err = insertTransaction(ctx, tx.QueryRowContext, movement)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}
