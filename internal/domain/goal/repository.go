package goal

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/transaction"
)

// Repository defines the interface for goal data access.
type Repository interface {
	Create(ctx context.Context, g *Goal) (*Goal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	ListByChildren(ctx context.Context, childIDs []uuid.UUID) ([]*Goal, error)
	Approve(ctx context.Context, id uuid.UUID) (*Goal, error)
	// ApplyMovement stores g's new amount and status together with the
	// paired transaction in one database transaction. It fails with
	// ErrGoalChanged when the stored amount no longer equals previous.
	ApplyMovement(ctx context.Context, g *Goal, previous decimal.Decimal, movement transaction.CreateParams) (*transaction.Transaction, error)
}
