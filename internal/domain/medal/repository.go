package medal

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/transaction"
)

// Repository defines the interface for medal data access.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Medal, error)
	ListByChildren(ctx context.Context, childIDs []uuid.UUID) ([]*Medal, error)
	// GrantPrize sets the prize and writes the debit and credit rows in one
	// database transaction. It returns ErrPrizeAlreadyGranted when the medal
	// already carries a prize.
	GrantPrize(ctx context.Context, medalID uuid.UUID, amount decimal.Decimal, debit, credit transaction.CreateParams) error
}
