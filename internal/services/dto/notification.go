package dto

import (
	"encoding/json"
	"time"

	"mehndi_backend/internal/models"
)

type NotificationListQuery struct {
	UnreadOnly bool `form:"unread_only"`
	PageQuery
}

type NotificationResponse struct {
	ID               string                  `json:"id"`
	NotificationType models.NotificationType `json:"notification_type"`
	Title            string                  `json:"title"`
	Message          string                  `json:"message"`
	BookingID        *string                 `json:"booking_id"`
	Data             json.RawMessage         `json:"data,omitempty"`
	IsRead           bool                    `json:"is_read"`
	ReadAt           *time.Time              `json:"read_at,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func NewNotificationResponse(n *models.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:               n.ID,
		NotificationType: n.Type,
		Title:            n.Title,
		Message:          n.Message,
		BookingID:        n.BookingID,
		IsRead:           n.IsRead,
		ReadAt:           n.ReadAt,
		CreatedAt:        n.CreatedAt,
	}
	if len(n.Data) > 0 {
		resp.Data = json.RawMessage(n.Data)
	}
	return resp
}
