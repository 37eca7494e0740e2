package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/shared/apperr"
)

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Categories used by system-generated movements.
const (
	CategorySavings = "Metas"
	CategoryPrize   = "Prêmios"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidType         = errors.New("type must be 'income' or 'expense'")
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single income or expense row. Rows are never updated.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Category        *string         `json:"category,omitempty"`
	Type            Type            `json:"type"`
	ExpenseDate     time.Time       `json:"expense_date"`
	GoalID          *uuid.UUID      `json:"goal_id,omitempty"`
	ReceiptImageURL *string         `json:"receipt_image_url,omitempty"`
	Location        *string         `json:"location,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Signed returns the amount with expenses negated.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

type CreateParams struct {
	UserID          uuid.UUID
	Description     string
	Amount          decimal.Decimal
	Category        *string
	Type            Type
	ExpenseDate     time.Time
	GoalID          *uuid.UUID
	ReceiptImageURL *string
	Location        *string
}

func (p CreateParams) Validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("valid user ID is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return apperr.NewValidationError("description", "is required")
	}
	if !p.Amount.IsPositive() {
		return apperr.NewValidationError("amount", "must be greater than zero")
	}
	if !p.Type.Valid() {
		return apperr.NewValidationError("type", ErrInvalidType.Error())
	}
	if p.ExpenseDate.IsZero() {
		return apperr.NewValidationError("expense_date", "is required")
	}
	return nil
}
