package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for notification data access.
// Defined in the domain layer, implemented in the infrastructure layer.
type Repository interface {
	// Device tokens
	UpsertDeviceToken(ctx context.Context, params CreateDeviceTokenParams) (*DeviceToken, error)
	GetActiveTokensByUserID(ctx context.Context, userID uuid.UUID) ([]*DeviceToken, error)
	DeactivateToken(ctx context.Context, token string) error

	// Notifications
	Create(ctx context.Context, params CreateParams) (*Notification, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}
