package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for transaction data access.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Transaction, error)
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*Transaction, error)
}
