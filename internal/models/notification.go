package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID    string           `gorm:"size:36;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(50);not null" json:"notification_type"`
	Title     string           `gorm:"size:200;not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	BookingID *string          `gorm:"size:36;index" json:"booking_id"`
	Data      datatypes.JSON   `json:"data,omitempty"` // {"design_id": "...", "review_id": "..."}
	IsRead    bool             `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	IsEmailed bool             `gorm:"not null;default:false;index" json:"is_emailed"`
	EmailedAt *time.Time       `json:"-"`
	// Неудачные попытки отправки; следующая не раньше NextEmailAt
	EmailAttempts int        `gorm:"not null;default:0" json:"-"`
	NextEmailAt   *time.Time `gorm:"index" json:"-"`
}
