package profile

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for profile data access.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*Profile, error)
	SetPasswordResetRequired(ctx context.Context, id uuid.UUID, required bool) error
}
