package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mesada/internal/shared/messages"
)

// Service contains the business logic for notification operations
type Service struct {
	repo      Repository
	messenger Messenger
	log       zerolog.Logger
}

// NewService creates a new notification service. messenger may be nil when
// push delivery is not configured.
func NewService(repo Repository, messenger Messenger, log zerolog.Logger) *Service {
	return &Service{repo: repo, messenger: messenger, log: log}
}

// RegisterDevice registers a device token for the authenticated user.
// If the token already belongs to another user, it is reassigned.
func (s *Service) RegisterDevice(ctx context.Context, params CreateDeviceTokenParams) (*DeviceToken, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpsertDeviceToken(ctx, params)
}

// List returns the user's latest notifications as they were before this
// fetch, then marks the unread ones as read. A failed mark is only logged.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Notification, error) {
	list, err := s.repo.ListByUserID(ctx, userID, DefaultListLimit)
	if err != nil {
		return nil, err
	}

	if unread := UnreadIDs(list); len(unread) > 0 {
		if err := s.repo.MarkRead(ctx, userID, unread); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to mark notifications as read")
		}
	}
	return list, nil
}

// Notify stores a notification for userID and pushes it to the user's
// active devices. Push failures are logged, not returned.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, msg messages.MessageText) error {
	params := CreateParams{UserID: userID, Title: msg.Title, Message: msg.Body}
	if err := params.Validate(); err != nil {
		return err
	}

	stored, err := s.repo.Create(ctx, params)
	if err != nil {
		return err
	}

	if s.messenger == nil {
		return nil
	}

	tokens, err := s.repo.GetActiveTokensByUserID(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to load device tokens")
		return nil
	}
	if len(tokens) == 0 {
		return nil
	}

	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}

	data := map[string]string{
		"route":           "notifications",
		"notification_id": stored.ID.String(),
	}
	if err := s.messenger.SendMulticast(ctx, tokenStrings, msg.Title, msg.Body, data); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to push notification")
	}
	return nil
}

// DeactivateToken marks an FCM token invalid. Used as the messenger's
// deactivator callback.
func (s *Service) DeactivateToken(ctx context.Context, token string) error {
	return s.repo.DeactivateToken(ctx, token)
}
