package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"mesada/internal/domain/notification"
)

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error)
	RegisterDevice(ctx context.Context, params notification.CreateDeviceTokenParams) (*notification.DeviceToken, error)
}

type NotificationHandler struct {
	notificationService NotificationService
}

func NewNotificationHandler(notificationService NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type RegisterDeviceRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// HandleNotifications handles GET /api/notifications. The list is returned
// as it was before the fetch marked it read.
func (h *NotificationHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	list, err := h.notificationService.List(r.Context(), sess.Identity.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if list == nil {
		list = []*notification.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleRegisterDevice handles POST /api/notifications/register-device/
func (h *NotificationHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req RegisterDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.notificationService.RegisterDevice(r.Context(), notification.CreateDeviceTokenParams{
		UserID:     sess.Identity.ID,
		Token:      req.Token,
		DeviceType: req.DeviceType,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"token":   token.Token,
	})
}
