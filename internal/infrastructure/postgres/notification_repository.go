package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"mesada/internal/domain/notification"
)

const deviceTokenColumns = `id, user_id, token, device_type, is_active, created_at, last_used`

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func scanDeviceToken(row rowScanner) (*notification.DeviceToken, error) {
	var dt notification.DeviceToken
	if err := row.Scan(&dt.ID, &dt.UserID, &dt.Token, &dt.DeviceType, &dt.IsActive, &dt.CreatedAt, &dt.LastUsed); err != nil {
		return nil, err
	}
	return &dt, nil
}

// UpsertDeviceToken registers a device token, moving it to userID when
// another user held it.
func (r *NotificationRepository) UpsertDeviceToken(ctx context.Context, params notification.CreateDeviceTokenParams) (*notification.DeviceToken, error) {
	query := `
		INSERT INTO fcm_device_tokens (user_id, token, device_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE
			SET user_id = EXCLUDED.user_id,
			    device_type = EXCLUDED.device_type,
			    is_active = true,
			    last_used = NOW()
		RETURNING ` + deviceTokenColumns

	dt, err := scanDeviceToken(r.db.QueryRowContext(ctx, query, params.UserID, params.Token, params.DeviceType))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device token: %w", err)
	}
	return dt, nil
}

func (r *NotificationRepository) GetActiveTokensByUserID(ctx context.Context, userID uuid.UUID) ([]*notification.DeviceToken, error) {
	query := `
		SELECT ` + deviceTokenColumns + `
		FROM fcm_device_tokens
		WHERE user_id = $1 AND is_active = true
		ORDER BY last_used DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*notification.DeviceToken
	for rows.Next() {
		dt, err := scanDeviceToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, dt)
	}
	return tokens, rows.Err()
}

func (r *NotificationRepository) DeactivateToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE fcm_device_tokens SET is_active = false WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate token: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Create(ctx context.Context, params notification.CreateParams) (*notification.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, title, message)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, title, message, created_at, is_read
	`

	var n notification.Notification
	err := r.db.QueryRowContext(ctx, query, params.UserID, params.Title, params.Message).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.CreatedAt, &n.IsRead,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

// ListByUserID returns up to limit notifications, newest first.
func (r *NotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	query := `
		SELECT id, user_id, title, message, created_at, is_read
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.CreatedAt, &n.IsRead); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND id = ANY($2::uuid[])`,
		userID, uuidArray(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}
