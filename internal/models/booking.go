package models

import "time"

type Booking struct {
	BaseModel
	CustomerID string `gorm:"size:36;not null;index" json:"customer_id"`
	Customer   *User  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	DesignerID string `gorm:"size:36;not null;index:idx_booking_designer_start" json:"designer_id"`
	Designer   *User  `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`

	// Интервал [StartsAt, EndsAt) в UTC
	StartsAt      time.Time `gorm:"not null;index:idx_booking_designer_start" json:"starts_at"`
	EndsAt        time.Time `gorm:"not null" json:"ends_at"`
	DurationHours int       `gorm:"not null" json:"duration_hours"`

	EventType      string   `gorm:"size:100;not null" json:"event_type"`
	Location       string   `gorm:"size:300;not null" json:"location"`
	Notes          string   `gorm:"type:text" json:"notes"`
	EstimatedPrice *float64 `json:"estimated_price"`

	Status             BookingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CancelledByID      *string       `gorm:"size:36" json:"cancelled_by,omitempty"`
	CancellationReason string        `gorm:"type:text" json:"cancellation_reason,omitempty"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	ReminderSentAt     *time.Time    `json:"-"`
}

// IsPast - время начала уже прошло
func (b *Booking) IsPast(now time.Time) bool {
	return !b.StartsAt.After(now)
}

// IsParty - пользователь является клиентом или дизайнером бронирования
func (b *Booking) IsParty(userID string) bool {
	return userID == b.CustomerID || userID == b.DesignerID
}

// Counterpart возвращает вторую сторону бронирования
func (b *Booking) Counterpart(userID string) string {
	if userID == b.CustomerID {
		return b.DesignerID
	}
	return b.CustomerID
}
