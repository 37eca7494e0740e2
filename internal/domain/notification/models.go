package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var validDeviceTypes = map[string]struct{}{
	"ios":     {},
	"android": {},
}

// Domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidDeviceType    = errors.New("device type must be 'ios' or 'android'")
	ErrInvalidToken         = errors.New("device token is required")
)

// DefaultListLimit caps how many notifications one fetch returns.
const DefaultListLimit = 50

// DeviceToken represents a registered FCM device token
type DeviceToken struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Token      string    `json:"token"`
	DeviceType string    `json:"device_type"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
}

// Notification represents a stored notification record
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

// CreateDeviceTokenParams contains parameters for registering a device
type CreateDeviceTokenParams struct {
	UserID     uuid.UUID
	Token      string
	DeviceType string
}

func (p CreateDeviceTokenParams) Validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("valid user ID is required")
	}
	if p.Token == "" {
		return ErrInvalidToken
	}
	if !IsValidDeviceType(p.DeviceType) {
		return ErrInvalidDeviceType
	}
	return nil
}

// CreateParams contains parameters for storing a notification
type CreateParams struct {
	UserID  uuid.UUID
	Title   string
	Message string
}

func (p CreateParams) Validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("valid user ID is required")
	}
	if p.Title == "" {
		return errors.New("notification title is required")
	}
	if p.Message == "" {
		return errors.New("notification message is required")
	}
	return nil
}

func IsValidDeviceType(dt string) bool {
	_, ok := validDeviceTypes[dt]
	return ok
}

// UnreadIDs returns the ids of notifications not yet read.
func UnreadIDs(list []*Notification) []uuid.UUID {
	var ids []uuid.UUID
	for _, n := range list {
		if !n.IsRead {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
