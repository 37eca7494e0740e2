package child

import (
	"context"

	"github.com/google/uuid"

	"mesada/internal/domain/identity"
	"mesada/internal/domain/profile"
)

// Repository defines the interface for dependent data access.
type Repository interface {
	// Create inserts the dependent's profile and children row atomically.
	Create(ctx context.Context, p profile.CreateParams, c *Child) (*Child, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Child, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*Child, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Child, error)
}

// Accounts creates and removes dependent identities.
type Accounts interface {
	CreateUser(ctx context.Context, email, password string) (*identity.Identity, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// AccountRemover runs the cascading account deletion.
type AccountRemover interface {
	DeleteUserAndData(ctx context.Context, userID uuid.UUID) error
}
