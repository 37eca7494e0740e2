package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"mesada/internal/domain/transaction"
)

const transactionColumns = `id, user_id, description, amount, category, type, expense_date,
	goal_id, receipt_image_url, location, created_at`

// TransactionRepository implements transaction.Repository over the expenses table.
type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	var category, receipt, location sql.NullString
	var goalID uuid.NullUUID

	err := row.Scan(
		&t.ID, &t.UserID, &t.Description, &t.Amount, &category, &t.Type, &t.ExpenseDate,
		&goalID, &receipt, &location, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Category = stringPtr(category)
	t.GoalID = uuidPtr(goalID)
	t.ReceiptImageURL = stringPtr(receipt)
	t.Location = stringPtr(location)
	return &t, nil
}

func uuidArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	return insertTransaction(ctx, r.db.QueryRowContext, params)
}

func insertTransaction(ctx context.Context, queryRow queryRowFunc, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := `
		INSERT INTO expenses (user_id, description, amount, category, type, expense_date,
		                      goal_id, receipt_image_url, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + transactionColumns

	t, err := scanTransaction(queryRow(ctx, query,
		params.UserID, params.Description, params.Amount, nullString(params.Category), params.Type,
		params.ExpenseDate, nullUUID(params.GoalID), nullString(params.ReceiptImageURL), nullString(params.Location),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return t, nil
}

// ListByUsers returns the transactions owned by any of userIDs, most recent first.
func (r *TransactionRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*transaction.Transaction, error) {
	if len(userIDs) == 0 {
		return []*transaction.Transaction{}, nil
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM expenses
		WHERE user_id = ANY($1::uuid[])
		ORDER BY expense_date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, uuidArray(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*transaction.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
